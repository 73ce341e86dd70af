package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
)

// newJSONHandler writes one object per line with lowercase levels, UTC
// millisecond timestamps and a short "caller" field in place of slog's
// source group.
func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl, AddSource: addSource}
	opts.ReplaceAttr = func(groups []string, attr slog.Attr) slog.Attr {
		if len(groups) > 0 {
			return attr
		}
		switch attr.Key {
		case slog.TimeKey:
			if attr.Value.Kind() == slog.KindTime {
				return slog.String(slog.TimeKey, attr.Value.Time().UTC().Format("2006-01-02T15:04:05.000Z07:00"))
			}
		case slog.LevelKey:
			return slog.String(slog.LevelKey, strings.ToLower(attr.Value.String()))
		case slog.SourceKey:
			if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
				return slog.String("caller", filepath.Base(src.File)+":"+strconv.Itoa(src.Line))
			}
		}
		return attr
	}
	return slog.NewJSONHandler(w, opts)
}
