package colonnade

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/fatih/color"
	"gitlab.com/tozd/go/errors"

	"github.com/colonnade/colonnade/ansi"
)

// LevelStyle is the colour and appearance applied to a whole output
// line for one severity level. A zero Foreground or Background means
// that part is unset.
type LevelStyle struct {
	Foreground int
	Background int
	Codes      []int
}

func (s LevelStyle) sequence() string {
	var b strings.Builder
	if s.Foreground != 0 {
		b.WriteString(ansi.Foreground(s.Foreground))
	}
	if s.Background != 0 {
		b.WriteString(ansi.Background(s.Background))
	}
	for _, c := range s.Codes {
		b.WriteString(ansi.SGR(c))
	}
	return b.String()
}

// Palette maps severity levels to line colours.
type Palette struct {
	levels map[slog.Level]LevelStyle
}

var palettePresets = map[string]map[slog.Level]LevelStyle{
	"sensible": {
		LevelTrace:  {Foreground: 245},
		LevelDebug:  {Foreground: 33},
		LevelInfo:   {Foreground: 255},
		LevelNotice: {Foreground: 45},
		LevelWarn:   {Foreground: 214},
		LevelError:  {Foreground: 196, Codes: []int{1}},
		LevelFatal:  {Foreground: 40, Background: 52, Codes: []int{1}},
	},
	"sensible_light": {
		LevelTrace:  {Foreground: 245},
		LevelDebug:  {Foreground: 18},
		LevelInfo:   {Foreground: 232},
		LevelNotice: {Foreground: 26},
		LevelWarn:   {Foreground: 130},
		LevelError:  {Foreground: 196, Codes: []int{1}},
		LevelFatal:  {Foreground: 40, Background: 52, Codes: []int{1}},
	},
	"forest": {
		LevelTrace:  {Foreground: 240},
		LevelDebug:  {Foreground: 22},
		LevelInfo:   {Foreground: 34},
		LevelNotice: {Foreground: 28},
		LevelWarn:   {Foreground: 202},
		LevelError:  {Foreground: 124, Codes: []int{1}},
		LevelFatal:  {Foreground: 0, Background: 88, Codes: []int{1}},
	},
	"ocean": {
		LevelTrace:  {Foreground: 240},
		LevelDebug:  {Foreground: 47},
		LevelInfo:   {Foreground: 45},
		LevelNotice: {Foreground: 39},
		LevelWarn:   {Foreground: 27},
		LevelError:  {Foreground: 15, Codes: []int{1}},
		LevelFatal:  {Foreground: 15, Background: 18, Codes: []int{1}},
	},
	"synth": {
		LevelTrace:  {Foreground: 240},
		LevelDebug:  {Foreground: 51},
		LevelInfo:   {Foreground: 207},
		LevelNotice: {Foreground: 213},
		LevelWarn:   {Foreground: 225},
		LevelError:  {Foreground: 129, Codes: []int{1}},
		LevelFatal:  {Foreground: 44, Background: 57, Codes: []int{1}},
	},
	"dawn": {
		LevelTrace:  {Foreground: 240},
		LevelDebug:  {Foreground: 200},
		LevelInfo:   {Foreground: 208},
		LevelNotice: {Foreground: 214},
		LevelWarn:   {Foreground: 190},
		LevelError:  {Foreground: 160, Codes: []int{1}},
		LevelFatal:  {Foreground: 226, Background: 52, Codes: []int{1}},
	},
	"heart": {
		LevelTrace:  {Foreground: 240},
		LevelDebug:  {Foreground: 231},
		LevelInfo:   {Foreground: 219},
		LevelNotice: {Foreground: 213},
		LevelWarn:   {Foreground: 51},
		LevelError:  {Foreground: 165, Codes: []int{1}},
		LevelFatal:  {Foreground: 51, Background: 204, Codes: []int{1}},
	},
}

// DefaultPalette returns the "sensible" preset.
func DefaultPalette() *Palette {
	p, _ := PalettePreset("sensible")
	return p
}

// PalettePreset returns a named preset palette. Palettes returned here
// are fresh values and safe to customise with SetLevel.
func PalettePreset(name string) (*Palette, errors.E) {
	preset, ok := palettePresets[name]
	if !ok {
		return nil, errors.WithDetails(errors.New("unknown palette preset"), "preset", name)
	}
	levels := make(map[slog.Level]LevelStyle, len(preset))
	for level, style := range preset {
		levels[level] = style
	}
	return &Palette{levels: levels}, nil
}

// PalettePresets lists the available preset names.
func PalettePresets() []string {
	names := make([]string, 0, len(palettePresets))
	for name := range palettePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetLevel sets one level's colour and appearance.
func (p *Palette) SetLevel(level slog.Level, style LevelStyle) {
	if p.levels == nil {
		p.levels = make(map[slog.Level]LevelStyle)
	}
	p.levels[level] = style
}

// styleFor resolves the style for a level. Levels without an exact
// entry borrow the nearest configured level at or below them, so custom
// intermediate levels still colourise sensibly.
func (p *Palette) styleFor(level slog.Level) (LevelStyle, bool) {
	if s, ok := p.levels[level]; ok {
		return s, true
	}
	var best slog.Level
	found := false
	for l := range p.levels {
		if l <= level && (!found || l > best) {
			best = l
			found = true
		}
	}
	if !found {
		return LevelStyle{}, false
	}
	return p.levels[best], true
}

// Render colourises each line for the given level: the level's escape
// prefix opens the line and is re-inserted after every embedded reset,
// so styling applied within the line cannot erase the level colour for
// the remainder of the line. Honours color.NoColor.
func (p *Palette) Render(level slog.Level, lines []string) []string {
	if p == nil || color.NoColor {
		return lines
	}
	style, ok := p.styleFor(level)
	if !ok {
		return lines
	}
	seq := style.sequence()
	if seq == "" {
		return lines
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		line = seq + strings.ReplaceAll(line, ansi.Reset, ansi.Reset+seq)
		out[i] = line + ansi.Reset
	}
	return out
}
