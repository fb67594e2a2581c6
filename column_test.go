package colonnade

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonnade/colonnade/ansi"
)

func buildColumn(t *testing.T, format string, style Style) *Column {
	t.Helper()
	c, err := newColumn(format, style, nil)
	require.NoError(t, err)
	return c
}

func TestRenderLinesExactFit(t *testing.T) {
	c := buildColumn(t, "{message}", testStyle("{message}", 40))
	c.reserved = 5

	lines := c.renderLines(map[string]string{"message": "hello"})
	require.Len(t, lines, 1)
	assert.Equal(t, "hello", lines[0])
}

func TestRenderLinesPadsRight(t *testing.T) {
	c := buildColumn(t, "{message}", testStyle("{message}", 40))
	c.reserved = 10

	lines := c.renderLines(map[string]string{"message": "hello"})
	require.Len(t, lines, 1)
	assert.Equal(t, "hello     ", lines[0])
}

func TestRenderLinesJustification(t *testing.T) {
	style := testStyle("{message}", 40)

	style.Justify = map[string]Justification{"message": JustifyRight}
	c := buildColumn(t, "{message}", style)
	c.reserved = 8
	assert.Equal(t, "   hello", c.renderLines(map[string]string{"message": "hello"})[0])

	style.Justify = map[string]Justification{"message": JustifyCenter}
	c = buildColumn(t, "{message}", style)
	c.reserved = 9
	assert.Equal(t, "  hello  ", c.renderLines(map[string]string{"message": "hello"})[0])
}

func TestRenderTruncatedKeepsTail(t *testing.T) {
	style := testStyle("{funcName}", 40)
	c := buildColumn(t, "{funcName}", style)
	require.True(t, c.truncate)
	c.reserved = 20

	path := "alpha.beta.gamma.delta.epsilon.zeta.theta.iota.kappa.lambda."
	require.Equal(t, 60, len(path))

	lines := c.renderLines(map[string]string{"funcName": path})
	require.Len(t, lines, 1)
	got := ansi.Strip(lines[0])
	assert.Equal(t, 20, ansi.Width(got))
	assert.True(t, strings.HasPrefix(got, "…"))
	assert.True(t, strings.HasSuffix(path, strings.TrimPrefix(got, "…")))
	assert.Equal(t, 20-1, len([]rune(strings.TrimPrefix(got, "…"))))
}

func TestRenderTruncatedKeepsTrailingLiteralAndFittingFields(t *testing.T) {
	style := testStyle("{name}.{funcName}()", 40)
	c := buildColumn(t, "{name}.{funcName}()", style)
	c.reserved = 16

	lines := c.renderLines(map[string]string{
		"name":     "very.long.module.path",
		"funcName": "run",
	})
	require.Len(t, lines, 1)
	got := ansi.Strip(lines[0])
	// The tail of the template survives intact; the head field absorbs
	// the cut behind the marker.
	assert.Equal(t, 16, ansi.Width(got))
	assert.True(t, strings.HasSuffix(got, ".run()"))
	assert.True(t, strings.HasPrefix(got, "…"))
}

func TestRenderTruncatedShortContentPads(t *testing.T) {
	style := testStyle("{funcName}", 40)
	c := buildColumn(t, "{funcName}", style)
	c.reserved = 12

	lines := c.renderLines(map[string]string{"funcName": "main"})
	require.Len(t, lines, 1)
	assert.Equal(t, 12, ansi.Width(ansi.Strip(lines[0])))
	assert.Contains(t, lines[0], "main")
}

func TestRenderWrappedLineWidths(t *testing.T) {
	style := testStyle("{message}", 40)
	style.Justify = map[string]Justification{"message": JustifyLeft}
	c := buildColumn(t, "{message}", style)
	c.reserved = 12

	msg := "the quick brown fox jumps over the lazy dog"
	lines := c.renderLines(map[string]string{"message": msg})
	require.Greater(t, len(lines), 1)
	for i, line := range lines {
		assert.Equal(t, 12, ansi.Width(line), "line %d", i)
	}
	// Break points fall on whitespace, so every word survives whole.
	joined := strings.Join(lines, " ")
	for _, word := range strings.Fields(msg) {
		assert.Contains(t, joined, word)
	}
}

func TestRenderWrappedPreservesStyling(t *testing.T) {
	style := testStyle("{message}", 40)
	c := buildColumn(t, "{message:b}", style)
	c.reserved = 10

	lines := c.renderLines(map[string]string{"message": "alpha beta gamma delta"})
	require.Greater(t, len(lines), 1)
	for _, line := range lines {
		// Styling restarts on every line rather than spanning breaks.
		assert.Contains(t, line, ansi.SGR(1))
		assert.Contains(t, line, ansi.Reset)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{
			name:  "fits",
			text:  "hello",
			width: 10,
			want:  []string{"hello"},
		},
		{
			name:  "breaks on whitespace",
			text:  "alpha beta gamma",
			width: 11,
			want:  []string{"alpha beta", "gamma"},
		},
		{
			name:  "hard breaks long token",
			text:  "abcdefghij",
			width: 4,
			want:  []string{"abcd", "efgh", "ij"},
		},
		{
			name:  "drops whitespace at breaks",
			text:  "one   two",
			width: 4,
			want:  []string{"one", "two"},
		},
		{
			name:  "empty",
			text:  "",
			width: 8,
			want:  []string{""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.text, tt.width))
		})
	}
}

func TestWrapTextWideRunes(t *testing.T) {
	lines := wrapText("日本語のログ", 4)
	for _, line := range lines {
		assert.LessOrEqual(t, ansi.Width(line), 4)
	}
	assert.Equal(t, "日本語のログ", strings.Join(lines, ""))
}

func TestWrapTextMonotonicLineCount(t *testing.T) {
	prev := 0
	for n := 1; n <= 120; n += 7 {
		msg := strings.Repeat("word ", n)
		count := len(wrapText(msg, 15))
		assert.GreaterOrEqual(t, count, prev, "length %d", n)
		prev = count
	}
}

func TestTailByWidth(t *testing.T) {
	assert.Equal(t, "cdef", tailByWidth("abcdef", 4))
	assert.Equal(t, "abcdef", tailByWidth("abcdef", 10))
	assert.Equal(t, "", tailByWidth("abcdef", 0))
	// A wide rune that does not fit in the remaining budget is dropped
	// whole rather than split.
	assert.Equal(t, "語", tailByWidth("日本語", 3))
}
