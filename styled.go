package colonnade

import (
	"regexp"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/colonnade/colonnade/ansi"
)

// DirectiveKind discriminates the parsed style directive variants.
type DirectiveKind int

const (
	Bold DirectiveKind = iota
	Italic
	Underline
	RawCode
	Foreground
	Background
)

// Directive is one resolved style instruction attached to a field.
// RawCode, Foreground and Background carry an SGR or 8-bit colour code.
type Directive struct {
	Kind DirectiveKind
	Code int
}

var (
	alphaRunPattern   = regexp.MustCompile(`[a-zA-Z]+`)
	numericRunPattern = regexp.MustCompile(`[0-9]+`)
)

// ParseDirectives parses a comma-separated style spec such as "b,u" or
// ">154,e" into resolved directives. Tokens mixing letters and digits in
// one run, e.g. "b51", are split into their letter and digit parts and
// processed independently.
//
// Recognised tokens:
//
//	b      bold
//	e      emphasis/italic
//	u      underline
//	<int>  the literal SGR code, e.g. 5 for slow blink
//	><int> 8-bit foreground colour code
//	<<int> 8-bit background colour code
func ParseDirectives(spec string) ([]Directive, errors.E) {
	spec = strings.ReplaceAll(spec, " ", "")
	if spec == "" {
		return nil, nil
	}

	var directives []Directive
	for _, token := range strings.Split(spec, ",") {
		if token == "" {
			continue
		}
		switch token[0] {
		case '>':
			code, err := strconv.Atoi(token[1:])
			if err != nil {
				return nil, errors.Errorf("invalid foreground colour directive %q", token)
			}
			directives = append(directives, Directive{Kind: Foreground, Code: code})
			continue
		case '<':
			code, err := strconv.Atoi(token[1:])
			if err != nil {
				return nil, errors.Errorf("invalid background colour directive %q", token)
			}
			directives = append(directives, Directive{Kind: Background, Code: code})
			continue
		}

		if !isAlphanumeric(token) {
			return nil, errors.Errorf("style directive %q is not alphanumeric", token)
		}

		// Letter and digit runs in a combined token like "b51" are
		// independent directives. Numbers are applied first, matching
		// the order raw codes and named styles concatenate.
		numbers := numericRunPattern.FindAllString(token, -1)
		letters := alphaRunPattern.FindAllString(token, -1)

		for _, n := range numbers {
			code, err := strconv.Atoi(n)
			if err != nil {
				return nil, errors.Errorf("invalid SGR code directive %q", n)
			}
			directives = append(directives, Directive{Kind: RawCode, Code: code})
		}
		for _, run := range letters {
			for _, r := range run {
				switch r {
				case 'b':
					directives = append(directives, Directive{Kind: Bold})
				case 'e':
					directives = append(directives, Directive{Kind: Italic})
				case 'u':
					directives = append(directives, Directive{Kind: Underline})
				default:
					return nil, errors.WithDetails(
						errors.New("unknown style directive"),
						"directive", string(r), "spec", spec)
				}
			}
		}
	}
	return directives, nil
}

// RenderStyled wraps text in the escape sequences for the given
// directives, ending with a single reset so styling cannot leak into
// subsequently concatenated text. With no directives the text is
// returned unchanged, with no escape bytes at all.
func RenderStyled(text string, directives []Directive) string {
	if len(directives) == 0 {
		return text
	}
	var b strings.Builder
	for _, d := range directives {
		switch d.Kind {
		case Bold:
			b.WriteString(ansi.SGR(ansi.CodeBold))
		case Italic:
			b.WriteString(ansi.SGR(ansi.CodeItalic))
		case Underline:
			b.WriteString(ansi.SGR(ansi.CodeUnderline))
		case RawCode:
			b.WriteString(ansi.SGR(d.Code))
		case Foreground:
			b.WriteString(ansi.Foreground(d.Code))
		case Background:
			b.WriteString(ansi.Background(d.Code))
		}
	}
	b.WriteString(text)
	b.WriteString(ansi.Reset)
	return b.String()
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		ok := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
		if !ok {
			return false
		}
	}
	return true
}
