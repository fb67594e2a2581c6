// Package ansi builds and strips ANSI SGR escape sequences and measures
// the visible width of terminal text.
package ansi

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// SGR parameter codes used by the styled-text renderer.
const (
	CodeReset     = 0
	CodeBold      = 1
	CodeItalic    = 3
	CodeUnderline = 4
)

// Reset clears all active SGR attributes.
const Reset = "\x1b[0m"

var escapePattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// SGR returns the escape sequence selecting the given SGR parameters,
// joined in a single sequence. With no codes it returns "".
func SGR(codes ...int) string {
	if len(codes) == 0 {
		return ""
	}
	params := make([]string, len(codes))
	for i, c := range codes {
		params[i] = strconv.Itoa(c)
	}
	return "\x1b[" + strings.Join(params, ";") + "m"
}

// Foreground returns the sequence selecting an 8-bit foreground colour.
func Foreground(code int) string {
	return SGR(38, 5, code)
}

// Background returns the sequence selecting an 8-bit background colour.
func Background(code int) string {
	return SGR(48, 5, code)
}

// Strip removes every SGR escape sequence from s.
func Strip(s string) string {
	if !strings.ContainsRune(s, '\x1b') {
		return s
	}
	return escapePattern.ReplaceAllString(s, "")
}

// Width reports the visible width of s in terminal cells, ignoring
// escape sequences. Wide runes count per their display width.
func Width(s string) int {
	return runewidth.StringWidth(Strip(s))
}
