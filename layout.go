package colonnade

import (
	"math"

	"gitlab.com/tozd/go/errors"
)

// minimumAdaptiveWidth is the least free space a configuration must
// leave for adaptive content to be considered usable.
const minimumAdaptiveWidth = 5

// layout is one computed arrangement of columns for a target width. It
// is immutable once built; a width or template change builds a new one.
type layout struct {
	*template
	width int
}

// computeLayout parses the style's format and distributes the target
// width across its columns: fixed demands first, then the remaining
// space shared among adaptive fields by weight.
func computeLayout(style Style, width int, warn func(format string, args ...any)) (*layout, errors.E) {
	t, err := parseTemplate(style, warn)
	if err != nil {
		return nil, err
	}

	fixed := t.outsideWidth + t.separatorWidth()
	for _, c := range t.columns {
		fixed += c.reserved
	}

	spaceForAdaptive := width - fixed
	if spaceForAdaptive < minimumAdaptiveWidth {
		return nil, errors.WithDetails(
			errors.New("insufficient space for this configuration, specify a higher width"),
			"width", width,
			"fixed", fixed,
			"minimum_adaptive", minimumAdaptiveWidth)
	}

	// Weights count per occurrence; a field's character allocation is
	// computed once and applied at each occurrence.
	totalWeight := 0.0
	for _, c := range t.columns {
		for _, f := range c.adaptiveFields {
			totalWeight += style.fieldWeight(f)
		}
	}

	if totalWeight > 0 {
		allocation := make(map[string]int)
		for _, c := range t.columns {
			for _, f := range c.adaptiveFields {
				if _, ok := allocation[f]; !ok {
					allocation[f] = int(math.Floor(
						style.fieldWeight(f) / totalWeight * float64(spaceForAdaptive)))
				}
			}
		}
		for _, c := range t.columns {
			for _, f := range c.adaptiveFields {
				c.reserved += allocation[f]
			}
		}

		// Floor division leaves a deficit; hand the spare characters
		// out one at a time to columns with adaptive content until
		// the target width is exactly accounted for.
		used := t.outsideWidth + t.separatorWidth()
		for _, c := range t.columns {
			used += c.reserved
		}
		deficit := width - used
		for deficit > 0 {
			for _, c := range t.columns {
				if len(c.adaptiveFields) == 0 {
					continue
				}
				c.reserved++
				deficit--
				if deficit == 0 {
					break
				}
			}
		}
	}

	return &layout{template: t, width: width}, nil
}
