package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/robalobadob/wordle/apps/tally/internal/session"
	"github.com/robalobadob/wordle/apps/tally/internal/words"
)

var envReplacer = strings.NewReplacer("-", "_")

type Config struct {
	bind           string
	clientOrigin   string
	dailySalt      string
	logFile        string
	logLevel       string
	port           int
	secureCookies  bool
	sessionTimeout time.Duration
	shake          time.Duration
	tokenSecret    string
	tokenTTL       time.Duration
	wordSource     string
	wordTimeout    time.Duration
	wordURL        string
	wordsFile      string
}

func (c *Config) validate() error {
	switch c.wordSource {
	case words.SourceRemote, words.SourceList, words.SourceDaily:
	default:
		return fmt.Errorf("invalid word source %q (want remote, list or daily)", c.wordSource)
	}
	if c.shake <= 0 {
		return errors.New("--shake must be positive")
	}
	if c.wordTimeout <= 0 {
		return errors.New("--word-timeout must be positive")
	}
	return nil
}

func (c *Config) validateServe() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sessionTimeout < 0 {
		return errors.New("--session-timeout must not be negative")
	}
	return nil
}

// sources builds the word providers named by --word-source.
func (c *Config) sources() (words.Registry, *words.Daily, error) {
	list, err := words.NewList(c.wordsFile)
	if err != nil {
		return nil, nil, err
	}
	daily := words.NewDaily(list, c.dailySalt)
	reg := words.Registry{
		words.SourceRemote: words.NewRemote(c.wordURL, c.wordTimeout),
		words.SourceList:   list,
		words.SourceDaily:  daily,
	}
	return reg, daily, nil
}

// setupLogging configures the global zerolog logger. The terminal UI owns
// stdout/stderr, so it logs to --log-file or not at all.
func (c *Config) setupLogging(tui bool) error {
	lvl, err := zerolog.ParseLevel(c.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.logLevel, err)
	}
	zerolog.SetGlobalLevel(lvl)

	if !tui {
		return nil
	}
	if c.logFile == "" {
		zerolog.SetGlobalLevel(zerolog.Disabled)
		return nil
	}
	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return nil
}

// applyEnv copies TALLY_* environment values into flags the user did not set.
func applyEnv(fs *pflag.FlagSet, v *viper.Viper) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "tally",
		Short:         "A five-letter word guessing game with green/yellow counts.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			applyEnv(cmd.Flags(), v)
			return cfg.validate()
		},
	}

	fs := cmd.PersistentFlags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.dailySalt, "daily-salt", "local_dev_salt", "key mixed into the daily word choice (env: TALLY_DAILY_SALT)")
	fs.StringVar(&cfg.logFile, "log-file", "", "write logs here when running the terminal game (env: TALLY_LOG_FILE)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: trace, debug, info, warn, error (env: TALLY_LOG_LEVEL)")
	fs.DurationVar(&cfg.shake, "shake", session.DefaultShake, "how long the input row shakes after a refused key (env: TALLY_SHAKE)")
	fs.StringVarP(&cfg.wordSource, "word-source", "s", words.SourceRemote, "where secret words come from: remote, list or daily (env: TALLY_WORD_SOURCE)")
	fs.DurationVar(&cfg.wordTimeout, "word-timeout", words.DefaultRemoteTimeout, "timeout for one remote word fetch (env: TALLY_WORD_TIMEOUT)")
	fs.StringVar(&cfg.wordURL, "word-url", words.DefaultRemoteURL, "remote word endpoint returning [\"word\"] (env: TALLY_WORD_URL)")
	fs.StringVar(&cfg.wordsFile, "words-file", "", "answer list, one word per line; empty uses the built-in list (env: TALLY_WORDS_FILE)")

	cmd.AddCommand(newServeCmd(cfg), newPlayCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("tally v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
