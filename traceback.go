package colonnade

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/fatih/color"
	slogformatter "github.com/samber/slog-formatter"
	"gitlab.com/tozd/go/errors"
)

// formatFrames renders a stack as one coloured "file:line: function"
// line per frame.
func formatFrames(frames *runtime.Frames) string {
	var lines []string
	for {
		frame, more := frames.Next()
		lines = append(lines, fmt.Sprintf("%s:%s: %s",
			color.GreenString(frame.File),
			color.BlueString(fmt.Sprintf("%d", frame.Line)),
			color.HiWhiteString(frame.Function)))
		if !more {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// Traceback renders an error into the traceback text appended after a
// formatted record. Errors carrying a gitlab.com/tozd/go/errors stack
// trace get a frame-by-frame listing, details and the cause chain;
// plain errors yield their message.
func Traceback(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(err.Error())

	if details := errors.Details(err); len(details) > 0 {
		for k, v := range details {
			b.WriteString(fmt.Sprintf("\n  %s=%v", k, v))
		}
	}

	if stackTracer, ok := err.(interface{ StackTrace() []uintptr }); ok {
		if stack := stackTracer.StackTrace(); len(stack) > 0 {
			b.WriteString("\n")
			b.WriteString(formatFrames(runtime.CallersFrames(stack)))
		}
	}

	cause := errors.Cause(err)
	if cause == nil {
		// Errors wrapped with %w carry no Cause method; walk the
		// standard unwrap chain to its root instead.
		for u := stderrors.Unwrap(err); u != nil; u = stderrors.Unwrap(u) {
			cause = u
		}
	}
	if cause != nil && cause != err && cause.Error() != err.Error() {
		b.WriteString("\ncaused by: ")
		b.WriteString(cause.Error())
	}
	return b.String()
}

// ErrorFormatter transforms error attrs into a structured group with
// message, type and stack trace. Used on the plain fallback handler
// path, where records are not column-formatted.
func ErrorFormatter(fieldName string) slogformatter.Formatter {
	return slogformatter.FormatByFieldType(fieldName, func(err error) slog.Value {
		values := []slog.Attr{
			slog.String("message", err.Error()),
			slog.String("traceback", Traceback(err)),
		}
		return slog.GroupValue(values...)
	})
}
