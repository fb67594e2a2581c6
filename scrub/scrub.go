// Package scrub cleans rendered log text: it strips redundant logger
// name prefixes and masks secret values embedded in messages.
package scrub

import (
	"regexp"
	"strings"
)

const maskChar = "*"

// defaultNamePatterns are logger name fragments carrying no information:
// the implicit root logger and common mixin suffixes.
var defaultNamePatterns = []string{
	`^root\.`,
	`\broot\.`,
	`Mixin\b`,
}

// secretKeyPattern matches key=value or "key: value" runs whose key
// names credential-like data. The value capture stops at the next
// separator so surrounding text survives untouched.
var secretKeyPattern = regexp.MustCompile(
	`(?i)(^|[\s,;({\[])` +
		`((?:api[_ -]?key|apikey|password|passwd|pwd|pass|token|jwt|` +
		`auth[_ -]?token|access[_ -]?token|refresh[_ -]?token|` +
		`client[_ -]?secret|private[_ -]?key|secret|credential|` +
		`bearer|authorization|salt))` +
		`(\s*[:=]\s*)([^\s,;)}\]]+)`)

// Cleaner rewrites logger names and message text per a compiled set of
// patterns. The zero value is not usable; construct with NewCleaner.
type Cleaner struct {
	namePatterns []*regexp.Regexp
	maskSecrets  bool
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithNamePatterns replaces the default redundant-name patterns.
func WithNamePatterns(patterns ...string) CleanerOption {
	return func(c *Cleaner) {
		c.namePatterns = nil
		for _, p := range patterns {
			c.namePatterns = append(c.namePatterns, regexp.MustCompile(p))
		}
	}
}

// WithSecretMasking enables masking of credential-like key=value pairs
// in messages.
func WithSecretMasking() CleanerOption {
	return func(c *Cleaner) {
		c.maskSecrets = true
	}
}

// NewCleaner compiles the configured patterns once, up front.
func NewCleaner(opts ...CleanerOption) *Cleaner {
	c := &Cleaner{}
	for _, p := range defaultNamePatterns {
		c.namePatterns = append(c.namePatterns, regexp.MustCompile(p))
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name strips redundant fragments from a dotted logger name.
func (c *Cleaner) Name(name string) string {
	for _, p := range c.namePatterns {
		name = p.ReplaceAllString(name, "")
	}
	return strings.Trim(name, ".")
}

// Message rewrites a message for output. With secret masking enabled,
// values following credential-like keys are replaced by a mask of equal
// length so column widths stay unchanged.
func (c *Cleaner) Message(msg string) string {
	if !c.maskSecrets {
		return msg
	}
	return secretKeyPattern.ReplaceAllStringFunc(msg, func(m string) string {
		groups := secretKeyPattern.FindStringSubmatch(m)
		return groups[1] + groups[2] + groups[3] + Mask(groups[4])
	})
}

// Mask replaces every character of s with the mask character,
// preserving its length.
func Mask(s string) string {
	return strings.Repeat(maskChar, len([]rune(s)))
}
