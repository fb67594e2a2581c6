// Package colonnade renders log records as visually aligned, optionally
// colourised columns, adaptively sized to a target line width.
//
// A format template describes which record fields appear in which
// columns. Placeholders may carry a style spec, and the column escape
// character ("_" by default) books a vertically aligned column:
//
//	{asctime:u} _| {levelname} _| {name}.{funcName} __>> {message:b}
//
// The spec after ":" is a comma-separated list of directives:
//
//	b      bold
//	e      emphasis/italic
//	u      underline
//	<int>  the literal SGR code, e.g. 5,9 sets slow blink and crossed-out
//	><int> 8-bit foreground colour code, e.g. >34 for a bright green
//	<<int> 8-bit background colour code
//
// The characters following a column escape up to the next whitespace
// are the separator glyphs printed between columns. A single escape
// prints them on the first line of multi-line output only, a doubled
// escape on every line:
//
//	11:44:13 | MyLog.my_function >> I am a very long message
//	                             >> that is printed over several
//	                             >> lines
//
// Columns receive a fixed width budget per layout pass. Fixed-length
// fields (timestamp, level name) reserve exactly their width; the
// remaining space is shared among adaptive fields (message, caller
// name, ...) by configurable weight. Content that exceeds a column's
// budget either wraps over multiple lines or, for fields registered
// for truncation, is trimmed to a single line keeping the tail behind
// a truncation marker.
//
// The quickest start wires everything into slog:
//
//	logger, err := colonnade.Setup(
//	    colonnade.WithStyle(colonnade.DefaultStyle()),
//	    colonnade.WithLevel(colonnade.LevelDebug),
//	)
//
// On a terminal the console receives column-aligned, palette-colourised
// output; elsewhere a plain handler takes over. Formatter and Style can
// also be used directly against any host logging framework able to hand
// over a Record.
package colonnade
