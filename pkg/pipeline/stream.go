package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/wdm0006/rawify/pkg/record"
)

// LineSource yields raw lines until io.EOF.
type LineSource interface {
	Next() (string, error)
}

// RecordSink consumes records, typically writing them out.
type RecordSink interface {
	Write(*record.Record) error
}

// RunLines decodes each line from src as a record, applies p, and writes
// the result to sink. Lines that fail to decode or transform are logged
// and skipped; only source and sink errors abort the run.
func RunLines(ctx context.Context, p *Pipeline, src LineSource, sink RecordSink, path string, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var sum Summary
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		raw, err := src.Next()
		if err == io.EOF {
			return sum, nil
		}
		if err != nil {
			return sum, fmt.Errorf("read %s: %w", path, err)
		}
		rec, err := record.Decode([]byte(strings.TrimSpace(raw)))
		if err != nil {
			logger.Warn("skipping invalid JSON line", "path", path, "line", n, "raw", raw, "error", err)
			sum.Add(Outcome{Path: path, Line: n, Status: StatusSkipped, Err: fmt.Errorf("%w: %v", ErrMalformed, err)})
			continue
		}
		out, err := p.Run(ctx, rec)
		if err != nil {
			var mf *MissingFieldError
			if errors.As(err, &mf) {
				logger.Warn("missing key in line", "path", path, "line", n, "key", mf.Field, "raw", raw)
			} else {
				logger.Warn("skipping line", "path", path, "line", n, "raw", raw, "error", err)
			}
			sum.Add(Outcome{Path: path, Line: n, Status: StatusSkipped, Err: err})
			continue
		}
		if err := sink.Write(out); err != nil {
			return sum, fmt.Errorf("write record from %s line %d: %w", path, n, err)
		}
		sum.Add(Outcome{Path: path, Line: n, Status: StatusDone})
	}
}
