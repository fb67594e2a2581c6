package colonnade

import "log/slog"

// LogHeader logs a title bracketed by full-width divider rules. It is
// an explicit wrapper the call site invokes directly; nothing is
// patched onto the logger type.
//
//	--------------------------------------------
//	11:44:13 |   INFO | Starting ingest run
//	--------------------------------------------
func LogHeader(logger *slog.Logger, msg string) {
	logger.Info(dividerFlag)
	logger.Info(msg)
	logger.Info(dividerFlag)
}
