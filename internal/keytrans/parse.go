package keytrans

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse reads a Konsole-style key-binding file: one entry per
// line of the form
//
//	key <key-name> [ + <modifier> ... ] [ ( state-spec ) ] : "<bytes>" | <command>
//
// where modifier is one of Shift/Ctrl/Alt/Meta/KeyPad/AnyMod, state-spec
// is a comma-separated list of signed flags (±NewLine, ±Ansi,
// ±AppCursorKeys, ±AppScreen, ±AppKeypad, ±AnyModifier), and the result
// is a C-escaped quoted byte string or one of the command tokens. Lines
// starting with '#' and blank lines are skipped; a `keyboard "<title>"`
// header line is accepted and ignored.
func Parse(r io.Reader) (*Translator, error) {
	t := New()
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "keyboard") {
			continue
		}
		e, err := parseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
		t.Add(e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

var modifierNames = map[string]Modifier{
	"shift":  ModShift,
	"ctrl":   ModCtrl,
	"alt":    ModAlt,
	"meta":   ModMeta,
	"keypad": ModKeyPad,
	"anymod": ModAnyMod,
}

var stateNames = map[string]State{
	"newline":       StateNewLine,
	"ansi":          StateAnsi,
	"appcursorkeys": StateAppCursorKeys,
	"appscreen":     StateAppScreen,
	"appkeypad":     StateAppKeypad,
	"anymodifier":   StateAnyModifier,
}

func parseEntry(line string) (Entry, error) {
	if !strings.HasPrefix(line, "key") {
		return Entry{}, fmt.Errorf("expected 'key' keyword")
	}
	rest := strings.TrimSpace(line[3:])

	colon := findResultColon(rest)
	if colon < 0 {
		return Entry{}, fmt.Errorf("missing ':' separator")
	}
	lhs := strings.TrimSpace(rest[:colon])
	rhs := strings.TrimSpace(rest[colon+1:])

	var e Entry

	// Split off a trailing parenthesized state-spec.
	if open := strings.IndexByte(lhs, '('); open >= 0 {
		closeIdx := strings.LastIndexByte(lhs, ')')
		if closeIdx < open {
			return Entry{}, fmt.Errorf("unterminated state spec")
		}
		spec := lhs[open+1 : closeIdx]
		lhs = strings.TrimSpace(lhs[:open])
		if err := parseStateSpec(spec, &e); err != nil {
			return Entry{}, err
		}
	}

	// Key name plus '+'-joined modifiers; every named modifier is both
	// required and part of the match mask.
	parts := strings.Split(lhs, "+")
	e.Key = strings.TrimSpace(parts[0])
	if e.Key == "" {
		return Entry{}, fmt.Errorf("empty key name")
	}
	for _, p := range parts[1:] {
		m, ok := modifierNames[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return Entry{}, fmt.Errorf("unknown modifier %q", p)
		}
		e.ModMask |= m
		e.ModMatch |= m
	}

	res, err := parseResult(rhs)
	if err != nil {
		return Entry{}, err
	}
	e.Result = res
	return e, nil
}

// findResultColon locates the ':' separating the match spec from the
// result, skipping any colon inside a quoted byte string (none should
// appear on the left side, but the scan is cheap).
func findResultColon(s string) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ':':
			if !inQuote {
				return i
			}
		}
	}
	return -1
}

func parseStateSpec(spec string, e *Entry) error {
	for _, f := range strings.Split(spec, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		want := true
		switch f[0] {
		case '+':
			f = f[1:]
		case '-':
			want = false
			f = f[1:]
		}
		bit, ok := stateNames[strings.ToLower(strings.TrimSpace(f))]
		if !ok {
			return fmt.Errorf("unknown state flag %q", f)
		}
		e.StateMask |= bit
		if want {
			e.StateMatch |= bit
		}
	}
	return nil
}

func parseResult(rhs string) (Result, error) {
	if strings.HasPrefix(rhs, "\"") {
		b, err := unescapeBytes(rhs)
		if err != nil {
			return Result{}, err
		}
		return Result{Bytes: b}, nil
	}
	cmd, ok := commandNames[strings.ToLower(rhs)]
	if !ok {
		return Result{}, fmt.Errorf("unknown command %q", rhs)
	}
	return Result{Command: cmd}, nil
}

// unescapeBytes decodes a quoted byte string with C-style escapes
// (\E and \e for ESC, \n \r \t \b \\ \", and \xNN hex bytes).
func unescapeBytes(s string) ([]byte, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return nil, fmt.Errorf("malformed quoted string %q", s)
	}
	body := s[1 : len(s)-1]
	var out []byte
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(body) {
			return nil, fmt.Errorf("trailing backslash")
		}
		switch body[i] {
		case 'E', 'e':
			out = append(out, 0x1b)
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case '\\':
			out = append(out, '\\')
		case '"':
			out = append(out, '"')
		case 'x':
			if i+2 >= len(body) {
				return nil, fmt.Errorf("truncated \\x escape")
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("bad \\x escape: %w", err)
			}
			out = append(out, byte(v))
			i += 2
		default:
			return nil, fmt.Errorf("unknown escape \\%c", body[i])
		}
	}
	return out, nil
}
