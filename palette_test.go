package colonnade_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonnade/colonnade"
	"github.com/colonnade/colonnade/ansi"
)

func withColour(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })
}

func TestPalettePresetsComplete(t *testing.T) {
	names := colonnade.PalettePresets()
	assert.Contains(t, names, "sensible")
	assert.Contains(t, names, "forest")

	levels := []slog.Level{
		colonnade.LevelTrace, colonnade.LevelDebug, colonnade.LevelInfo,
		colonnade.LevelNotice, colonnade.LevelWarn, colonnade.LevelError,
		colonnade.LevelFatal,
	}
	withColour(t)
	for _, name := range names {
		p, err := colonnade.PalettePreset(name)
		require.NoError(t, err, name)
		for _, level := range levels {
			out := p.Render(level, []string{"x"})
			assert.NotEqual(t, "x", out[0], "%s %s", name, level)
		}
	}
}

func TestPalettePresetUnknown(t *testing.T) {
	_, err := colonnade.PalettePreset("grayscale")
	assert.Error(t, err)
}

func TestRenderPrefixesAndReopensAfterReset(t *testing.T) {
	withColour(t)
	p := colonnade.DefaultPalette()

	styled := ansi.SGR(1) + "bold" + ansi.Reset + " rest"
	out := p.Render(colonnade.LevelError, []string{styled})
	require.Len(t, out, 1)

	line := out[0]
	assert.True(t, strings.HasPrefix(line, "\x1b["))
	assert.True(t, strings.HasSuffix(line, ansi.Reset))
	// The level colour is restored after the embedded reset so " rest"
	// stays coloured.
	idx := strings.Index(line, ansi.Reset)
	require.GreaterOrEqual(t, idx, 0)
	assert.True(t, strings.HasPrefix(line[idx+len(ansi.Reset):], "\x1b["))
	assert.Equal(t, "bold rest", ansi.Strip(line))
}

func TestRenderHonoursNoColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	p := colonnade.DefaultPalette()
	out := p.Render(colonnade.LevelError, []string{"plain"})
	assert.Equal(t, []string{"plain"}, out)
}

func TestRenderIntermediateLevelBorrowsLower(t *testing.T) {
	withColour(t)
	p := colonnade.DefaultPalette()

	// A level between WARN and ERROR renders with WARN's colour.
	between := p.Render(colonnade.LevelWarn+1, []string{"x"})
	warn := p.Render(colonnade.LevelWarn, []string{"x"})
	assert.Equal(t, warn, between)
}

func TestSetLevelOverride(t *testing.T) {
	withColour(t)
	p := colonnade.DefaultPalette()
	p.SetLevel(colonnade.LevelInfo, colonnade.LevelStyle{Foreground: 82})

	out := p.Render(colonnade.LevelInfo, []string{"x"})
	assert.Contains(t, out[0], ansi.Foreground(82))
}

func TestLevelStyleCombination(t *testing.T) {
	withColour(t)
	p := &colonnade.Palette{}
	p.SetLevel(colonnade.LevelFatal, colonnade.LevelStyle{
		Foreground: 40,
		Background: 52,
		Codes:      []int{1},
	})

	out := p.Render(colonnade.LevelFatal, []string{"down"})
	assert.Contains(t, out[0], ansi.Foreground(40))
	assert.Contains(t, out[0], ansi.Background(52))
	assert.Contains(t, out[0], ansi.SGR(1))
}
