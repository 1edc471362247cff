package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/metaview-dev/mapp-sdk/wireformat"
)

// Forward re-emits the guest log records found in stderr through logger,
// tagged with source=guest. Lines that are not log records are copied to
// passthrough unchanged; a nil passthrough discards them.
func Forward(ctx context.Context, logger *slog.Logger, stderr []byte, passthrough io.Writer) error {
	if passthrough == nil {
		passthrough = io.Discard
	}
	handler := logger.Handler().WithAttrs([]slog.Attr{slog.String("source", "guest")})

	for len(stderr) > 0 {
		line := stderr
		if i := bytes.IndexByte(stderr, '\n'); i >= 0 {
			line, stderr = stderr[:i+1], stderr[i+1:]
		} else {
			stderr = nil
		}

		record, ok := parseRecord(line)
		if !ok {
			if _, err := passthrough.Write(line); err != nil {
				return err
			}
			continue
		}
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func parseRecord(line []byte) (slog.Record, bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return slog.Record{}, false
	}
	var msg LogMessageWire
	if err := wireformat.Unmarshal(string(trimmed), &msg); err != nil || msg.Level == "" {
		return slog.Record{}, false
	}
	record, err := msg.Record()
	if err != nil {
		return slog.Record{}, false
	}
	return record, true
}
