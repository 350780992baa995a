package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/wordle/apps/tally/internal/game"
	"github.com/robalobadob/wordle/apps/tally/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	guessBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Width(3).
			Align(lipgloss.Center)

	inputBoxStyle = guessBoxStyle.
			BorderForeground(lipgloss.Color("#FAFAFA"))

	greenBoxStyle = guessBoxStyle.
			Background(lipgloss.Color("#04B575")).
			BorderForeground(lipgloss.Color("#04B575")).
			Foreground(lipgloss.Color("#FAFAFA"))

	yellowBoxStyle = guessBoxStyle.
			Background(lipgloss.Color("#E5C07B")).
			BorderForeground(lipgloss.Color("#E5C07B")).
			Foreground(lipgloss.Color("#1A1A1A"))

	winStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575")).
			MarginTop(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			MarginTop(1)
)

// shakeOffset is how far the input row jumps while the shake flag is set.
const shakeOffset = 2

// roundMsg carries a session update into the bubbletea loop.
type roundMsg game.Round

// Model renders one session and forwards keys to it. The displayed round
// only changes through roundMsg, so the view follows the session's order.
type Model struct {
	ctx   context.Context
	sess  *session.Session
	round game.Round
}

// New builds a Model over sess. Word fetches are bound to ctx.
func New(ctx context.Context, sess *session.Session) Model {
	return Model{ctx: ctx, sess: sess, round: sess.Round()}
}

func (m Model) Init() tea.Cmd {
	return m.startRound()
}

// startRound fetches a word off the event loop.
func (m Model) startRound() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		sess.NewRound(ctx)
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case roundMsg:
		m.round = game.Round(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlN:
			return m, m.startRound()
		case tea.KeyEnter:
			m.sess.Key(game.KeyEnter)
		case tea.KeyBackspace:
			m.sess.Key(game.KeyBackspace)
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m.sess.Key(string(r))
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tally"))
	b.WriteString("\n")

	if m.round.Phase() == game.PhaseAwaitingWord {
		b.WriteString("Loading word...\n")
		return b.String()
	}

	for _, e := range m.round.History {
		b.WriteString(historyRow(e))
		b.WriteString("\n")
	}

	row := inputRow(m.round.Guess)
	if m.round.Shake {
		row = lipgloss.NewStyle().MarginLeft(shakeOffset).Render(row)
	}
	b.WriteString(row)
	b.WriteString("\n")

	if m.round.Won {
		b.WriteString(winStyle.Render("You guessed it! The word was " + m.round.Secret + "."))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render("ctrl+n: new round • esc: quit"))
	} else {
		b.WriteString(infoStyle.Render("type a word • enter: submit • backspace: delete • ctrl+n: new round • esc: quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func historyRow(e game.Entry) string {
	cells := make([]string, 0, game.WordLength+2)
	for _, c := range e.Guess {
		cells = append(cells, guessBoxStyle.Render(string(c)))
	}
	cells = append(cells,
		greenBoxStyle.Render(strconv.Itoa(e.Score.Green)),
		yellowBoxStyle.Render(strconv.Itoa(e.Score.Yellow)),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func inputRow(guess string) string {
	cells := make([]string, game.WordLength)
	for i := range cells {
		ch := " "
		if i < len(guess) {
			ch = guess[i : i+1]
		}
		cells[i] = inputBoxStyle.Render(ch)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// Run drives sess from the terminal until the user quits or ctx ends.
// The program subscribes to sess for its lifetime and unsubscribes on exit.
func Run(ctx context.Context, sess *session.Session, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, sess), opts...)

	unsubscribe := sess.Subscribe(func(r game.Round) {
		p.Send(roundMsg(r))
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
