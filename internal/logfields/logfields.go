package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeySource     = "source"
	KeyOutput     = "output"
	KeyFile       = "file"
	KeyPath       = "path"
	KeyTag        = "tag"
	KeyToplevel   = "toplevel"
	KeyEngine     = "engine"
	KeyStylesheet = "stylesheet"
	KeyIncludes   = "includes"
	KeyTitle      = "title"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Source(p string) slog.Attr     { return slog.String(KeySource, p) }
func Output(p string) slog.Attr     { return slog.String(KeyOutput, p) }
func File(name string) slog.Attr    { return slog.String(KeyFile, name) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Tag(t string) slog.Attr        { return slog.String(KeyTag, t) }
func Toplevel(t string) slog.Attr   { return slog.String(KeyToplevel, t) }
func Engine(name string) slog.Attr  { return slog.String(KeyEngine, name) }
func Stylesheet(p string) slog.Attr { return slog.String(KeyStylesheet, p) }
func Includes(n int) slog.Attr      { return slog.Int(KeyIncludes, n) }
func Title(t string) slog.Attr      { return slog.String(KeyTitle, t) }
func DurationMS(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMS, ms)
}

// Since reports the elapsed time from start in milliseconds.
func Since(start time.Time) slog.Attr {
	return DurationMS(float64(time.Since(start).Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
