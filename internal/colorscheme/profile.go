package colorscheme

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// HistoryMode selects which scrollback backend a profile asks for.
type HistoryMode int

const (
	HistoryDisabled HistoryMode = iota
	HistoryFixedSize
	HistoryUnlimited
)

// ScrollBarPosition is where the host places the scrollbar.
type ScrollBarPosition int

const (
	ScrollBarNone ScrollBarPosition = iota
	ScrollBarLeft
	ScrollBarRight
)

// CursorShape selects the cursor glyph a profile requests.
type CursorShape int

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorIBeam
)

// Profile is the parsed key/value profile file. Unknown
// keys are preserved in Extra so a round-trip through the host's editor
// loses nothing.
type Profile struct {
	Name                        string
	Command                     string
	Arguments                   []string
	Icon                        string
	LocalTabTitleFormat         string
	RemoteTabTitleFormat        string
	TabBarMode                  string
	ShowMenuBar                 bool
	KeyBindings                 string
	ColorScheme                 string
	Font                        string
	HistoryMode                 HistoryMode
	HistorySize                 int
	ScrollBarPosition           ScrollBarPosition
	FlowControlEnabled          bool
	AllowProgramsToResizeWindow bool
	BlinkingTextEnabled         bool
	BlinkingCursorEnabled       bool
	CursorShape                 CursorShape
	UseCustomCursorColor        bool
	CustomCursorColor           string
	WordCharacters              string

	Extra map[string]string
}

// DefaultProfile returns the values an empty profile file resolves to.
func DefaultProfile() *Profile {
	return &Profile{
		LocalTabTitleFormat:         "%w",
		RemoteTabTitleFormat:        "%w",
		HistoryMode:                 HistoryFixedSize,
		HistorySize:                 1000,
		ScrollBarPosition:           ScrollBarRight,
		FlowControlEnabled:          true,
		AllowProgramsToResizeWindow: true,
		WordCharacters:              ":@-./_~",
		Extra:                       map[string]string{},
	}
}

// ParseProfile reads a profile file: one "Key=Value" per line, '#'
// comments, blank lines ignored.
func ParseProfile(r io.Reader) (*Profile, error) {
	p := DefaultProfile()
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected Key=Value", lineno)
		}
		if err := p.apply(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Profile) apply(key, value string) error {
	switch key {
	case "Name":
		p.Name = value
	case "Command":
		p.Command = value
	case "Arguments":
		p.Arguments = splitArguments(value)
	case "Icon":
		p.Icon = value
	case "LocalTabTitleFormat":
		p.LocalTabTitleFormat = value
	case "RemoteTabTitleFormat":
		p.RemoteTabTitleFormat = value
	case "TabBarMode":
		p.TabBarMode = value
	case "ShowMenuBar":
		p.ShowMenuBar = parseBool(value)
	case "KeyBindings":
		p.KeyBindings = value
	case "ColorScheme":
		p.ColorScheme = value
	case "Font":
		p.Font = value
	case "HistoryMode":
		switch value {
		case "DisableHistory":
			p.HistoryMode = HistoryDisabled
		case "FixedSizeHistory":
			p.HistoryMode = HistoryFixedSize
		case "UnlimitedHistory":
			p.HistoryMode = HistoryUnlimited
		default:
			return fmt.Errorf("unknown HistoryMode %q", value)
		}
	case "HistorySize":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("bad HistorySize %q", value)
		}
		p.HistorySize = n
	case "ScrollBarPosition":
		switch value {
		case "None":
			p.ScrollBarPosition = ScrollBarNone
		case "Left":
			p.ScrollBarPosition = ScrollBarLeft
		case "Right":
			p.ScrollBarPosition = ScrollBarRight
		default:
			return fmt.Errorf("unknown ScrollBarPosition %q", value)
		}
	case "FlowControlEnabled":
		p.FlowControlEnabled = parseBool(value)
	case "AllowProgramsToResizeWindow":
		p.AllowProgramsToResizeWindow = parseBool(value)
	case "BlinkingTextEnabled":
		p.BlinkingTextEnabled = parseBool(value)
	case "BlinkingCursorEnabled":
		p.BlinkingCursorEnabled = parseBool(value)
	case "CursorShape":
		switch value {
		case "Block":
			p.CursorShape = CursorBlock
		case "Underline":
			p.CursorShape = CursorUnderline
		case "IBeam":
			p.CursorShape = CursorIBeam
		default:
			return fmt.Errorf("unknown CursorShape %q", value)
		}
	case "UseCustomCursorColor":
		p.UseCustomCursorColor = parseBool(value)
	case "CustomCursorColor":
		p.CustomCursorColor = value
	case "WordCharacters":
		p.WordCharacters = value
	default:
		p.Extra[key] = value
	}
	return nil
}

// splitArguments splits a whitespace-separated argument list, honoring
// double quotes around arguments with embedded spaces.
func splitArguments(s string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}
