package game

// Action is the logical meaning of a raw key event.
type Action int

const (
	ActionIgnore Action = iota
	ActionAppend
	ActionDelete
	ActionSubmit
)

// Key names used by browser and terminal hosts.
const (
	KeyEnter     = "Enter"
	KeyBackspace = "Backspace"
)

// ParseKey translates a raw key name into an Action.
// A single ASCII letter (either case) appends its uppercase form;
// anything unrecognized maps to ActionIgnore.
func ParseKey(key string) (Action, rune) {
	switch key {
	case KeyEnter:
		return ActionSubmit, 0
	case KeyBackspace:
		return ActionDelete, 0
	}
	if len(key) != 1 {
		return ActionIgnore, 0
	}
	r := rune(key[0])
	switch {
	case r >= 'A' && r <= 'Z':
		return ActionAppend, r
	case r >= 'a' && r <= 'z':
		return ActionAppend, r - 'a' + 'A'
	}
	return ActionIgnore, 0
}
