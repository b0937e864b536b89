// Package colorscheme parses the two on-disk color-scheme formats the
// core recognises: the sectioned key/value format with a
// General section plus twenty color sections, and the legacy KDE3 flat
// whitespace-separated format. It also parses profile files (profile.go).
// Parsing is hand-rolled: the grammar is Konsole's own INI-ish dialect,
// which no library in the ecosystem reads exactly.
package colorscheme

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/konsolecore/termcore"
)

// Scheme is a parsed color scheme: a description, an opacity in [0,1],
// and the 20-entry table the terminal resolves cell colors against.
type Scheme struct {
	Description string
	Opacity     float64
	Table       termcore.ColorTable
}

// sectionNames maps a scheme section heading to its ColorTable slot.
var sectionNames = buildSectionNames()

func buildSectionNames() map[string]int {
	m := map[string]int{"Foreground": 0, "Background": 1}
	for i := 0; i < 8; i++ {
		m[fmt.Sprintf("Color%d", i)] = i + 2
	}
	for _, name := range []string{"Foreground", "Background", "Color0", "Color1", "Color2", "Color3", "Color4", "Color5", "Color6", "Color7"} {
		m[name+"Intense"] = m[name] + termcore.BaseColors
	}
	return m
}

// Parse reads the sectioned color-scheme format.
func Parse(r io.Reader) (*Scheme, error) {
	s := &Scheme{Opacity: 1, Table: termcore.DefaultColorTable()}

	sc := bufio.NewScanner(r)
	section := ""
	slot := -1
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = line[1 : len(line)-1]
			if n, ok := sectionNames[section]; ok {
				slot = n
			} else {
				slot = -1
			}
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected key=value", lineno)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case section == "General":
			switch key {
			case "Description":
				s.Description = value
			case "Opacity":
				v, err := strconv.ParseFloat(value, 64)
				if err != nil || v < 0 || v > 1 {
					return nil, fmt.Errorf("line %d: opacity %q out of range", lineno, value)
				}
				s.Opacity = v
			}
		case slot >= 0:
			if err := applyColorKey(&s.Table[slot], key, value); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

func applyColorKey(e *termcore.ColorEntry, key, value string) error {
	switch key {
	case "Color":
		c, err := parseColor(value)
		if err != nil {
			return err
		}
		e.RGB = c
	case "Transparent":
		e.Transparent = parseBool(value)
	case "Bold":
		e.Bold = parseBool(value)
	}
	return nil
}

// parseColor accepts "#rrggbb" hex (validated through go-colorful) or the
// "r,g,b" decimal triplet older scheme files use.
func parseColor(value string) (color.RGBA, error) {
	if strings.HasPrefix(value, "#") {
		c, err := colorful.Hex(value)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("bad hex color %q: %w", value, err)
		}
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 255}, nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return color.RGBA{}, fmt.Errorf("bad color %q", value)
	}
	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return color.RGBA{}, fmt.Errorf("bad color component %q", p)
		}
		ch[i] = uint8(v)
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}, nil
}

func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// ParseKDE3 reads the legacy flat format: lines are either
// "color N R G B T B" (slot, RGB components, transparent flag, bold
// flag) or "title <text>".
func ParseKDE3(r io.Reader) (*Scheme, error) {
	s := &Scheme{Opacity: 1, Table: termcore.DefaultColorTable()}

	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "title":
			s.Description = strings.TrimSpace(strings.TrimPrefix(line, "title"))
		case "color":
			if len(fields) != 7 {
				return nil, fmt.Errorf("line %d: expected 'color N R G B T B'", lineno)
			}
			var nums [6]int
			for i := 0; i < 6; i++ {
				v, err := strconv.Atoi(fields[i+1])
				if err != nil {
					return nil, fmt.Errorf("line %d: bad number %q", lineno, fields[i+1])
				}
				nums[i] = v
			}
			slot := nums[0]
			if slot < 0 || slot >= termcore.TableColors {
				return nil, fmt.Errorf("line %d: slot %d out of range", lineno, slot)
			}
			s.Table[slot] = termcore.ColorEntry{
				RGB:         color.RGBA{R: uint8(nums[1]), G: uint8(nums[2]), B: uint8(nums[3]), A: 255},
				Transparent: nums[4] != 0,
				Bold:        nums[5] != 0,
			}
		default:
			return nil, fmt.Errorf("line %d: unknown directive %q", lineno, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// ColorFgBg renders the scheme's foreground and background as the
// COLORFGBG palette-index pair the child environment expects: the
// closest of the 8+8 system slots to each.
func (s *Scheme) ColorFgBg() (fg, bg int) {
	return s.closestSystemIndex(s.Table[0].RGB), s.closestSystemIndex(s.Table[1].RGB)
}

func (s *Scheme) closestSystemIndex(c color.RGBA) int {
	target, _ := colorful.MakeColor(c)
	best, bestDist := 0, -1.0
	for i := 0; i < 16; i++ {
		slot := i + 2
		if i >= 8 {
			slot = i - 8 + 2 + termcore.BaseColors
		}
		cand, _ := colorful.MakeColor(s.Table[slot].RGB)
		d := target.DistanceLab(cand)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
