// Package keytrans maps (key, modifier, terminal-mode) triples to byte
// sequences or abstract scroll/lock commands, backed by an ordered,
// first-match-wins list of entries loaded from a key-binding file plus
// a built-in default set.
package keytrans

import "strings"

// Modifier is the bitmask of active keyboard modifiers.
type Modifier uint16

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
	ModKeyPad
	ModAnyMod
)

// State is the bitmask snapshot of terminal modes consulted by lookup:
// newline, ansi, app-cursor, app-keypad, alt-screen, any-mod.
type State uint16

const (
	StateNewLine State = 1 << iota
	StateAnsi
	StateAppCursorKeys
	StateAppScreen
	StateAppKeypad
	StateAnyModifier
)

// Command is one of the abstract, non-byte-sequence results a lookup can
// produce.
type Command int

const (
	CommandNone Command = iota
	CommandScrollPageUp
	CommandScrollLineDown
	CommandScrollToTop
	CommandScrollToBottom
	CommandToggleScrollLock
	CommandEraseCharacter
)

var commandNames = map[string]Command{
	"scroll-page-up":     CommandScrollPageUp,
	"scroll-line-down":   CommandScrollLineDown,
	"scroll-to-top":      CommandScrollToTop,
	"scroll-to-bottom":   CommandScrollToBottom,
	"toggle-scroll-lock": CommandToggleScrollLock,
	"erase-character":    CommandEraseCharacter,
}

// Result is what a lookup produces: either a literal byte sequence to
// write to the PTY, or an abstract Command for the Session to act on.
type Result struct {
	Bytes   []byte
	Command Command
}

// IsCommand reports whether this result is an abstract command rather
// than a byte sequence.
func (r Result) IsCommand() bool { return r.Command != CommandNone }

// Entry is one row of the translator's ordered table: lookup chooses the
// first entry whose key matches and whose (modifiers & ModMask) ==
// ModMatch and (state & StateMask) == StateMatch.
type Entry struct {
	Key        string
	ModMask    Modifier
	ModMatch   Modifier
	StateMask  State
	StateMatch State
	Result     Result
}

// Translator holds an ordered entry list, first match wins.
type Translator struct {
	entries []Entry
}

// New returns an empty translator; entries are appended with Add or
// loaded in bulk with Parse.
func New() *Translator { return &Translator{} }

// Add appends an entry to the end of the table.
func (t *Translator) Add(e Entry) { t.entries = append(t.entries, e) }

// Lookup returns the first matching entry's result. Lookup has no side
// effects: the same (key, modifiers, state) triple always produces the
// same result.
func (t *Translator) Lookup(key string, mods Modifier, state State) (Result, bool) {
	for _, e := range t.entries {
		if !strings.EqualFold(e.Key, key) {
			continue
		}
		if mods&e.ModMask != e.ModMatch {
			continue
		}
		if state&e.StateMask != e.StateMatch {
			continue
		}
		return e.Result, true
	}
	return Result{}, false
}

// Translate consults the entry table first; if nothing matches and the
// event carries printable text, it applies the modifier-prefix fallback
// (Alt prepends ESC, Meta prepends the legacy CAN '@' s escape, Ctrl
// encodes the control byte) before sending the UTF-8 text.
func (t *Translator) Translate(key string, mods Modifier, state State, text string) Result {
	if r, ok := t.Lookup(key, mods, state); ok {
		return r
	}
	if text == "" {
		return Result{}
	}
	switch {
	case mods&ModAlt != 0:
		return Result{Bytes: append([]byte{0x1b}, []byte(text)...)}
	case mods&ModMeta != 0:
		return Result{Bytes: append([]byte{0x18, '@', 's'}, []byte(text)...)}
	case mods&ModCtrl != 0:
		if b, ok := controlByte(text); ok {
			return Result{Bytes: []byte{b}}
		}
	}
	return Result{Bytes: []byte(text)}
}

// controlByte computes the C0 control byte for a single printable
// character under Ctrl, e.g. Ctrl+A -> 0x01, Ctrl+[ -> 0x1b.
func controlByte(text string) (byte, bool) {
	r := []rune(text)
	if len(r) != 1 {
		return 0, false
	}
	c := r[0]
	switch {
	case c >= 'a' && c <= 'z':
		return byte(c-'a') + 1, true
	case c >= 'A' && c <= 'Z':
		return byte(c-'A') + 1, true
	case c >= '[' && c <= '_': // '[', '\', ']', '^', '_'
		return byte(c - 0x40), true
	case c == '@':
		return 0, true
	case c == '?':
		return 0x7f, true
	default:
		return 0, false
	}
}
