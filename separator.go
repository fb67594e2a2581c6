package colonnade

import (
	"strings"

	"github.com/colonnade/colonnade/ansi"
)

// Separator is a literal connector between columns. A single column
// escape prints the glyphs on the first line of a multi-line record
// only; a doubled escape repeats them on every line.
type Separator struct {
	content   string
	length    int
	multiline bool
}

func newSeparator(raw, escape string) *Separator {
	content := strings.ReplaceAll(raw, escape, "")
	return &Separator{
		content:   content,
		length:    ansi.Width(content),
		multiline: strings.HasPrefix(raw, escape+escape),
	}
}

// Line returns the rendered separator for the given output line index.
// Continuation lines of a first-line-only separator get spaces of equal
// length so column alignment is preserved.
func (s *Separator) Line(index int) string {
	if s.multiline || index == 0 {
		return s.content
	}
	return strings.Repeat(" ", s.length)
}

// Multiline reports whether the separator repeats on every wrapped line.
func (s *Separator) Multiline() bool { return s.multiline }

// Length is the visible width of the separator glyphs.
func (s *Separator) Length() int { return s.length }
