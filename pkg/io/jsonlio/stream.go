package jsonlio

import (
	iox "github.com/wdm0006/rawify/pkg/io/ioutils"
	"github.com/wdm0006/rawify/pkg/record"
)

// StreamWriter appends one encoded record per line. Output becomes
// visible at path only when Close succeeds.
type StreamWriter struct {
	out  *iox.AtomicFile
	rows int
}

func NewStreamWriter(path string) (*StreamWriter, error) {
	out, err := iox.CreateAtomic(path)
	if err != nil {
		return nil, err
	}
	return &StreamWriter{out: out}, nil
}

func (s *StreamWriter) Write(r *record.Record) error {
	b, err := r.MarshalJSON()
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if _, err := s.out.Write(b); err != nil {
		return err
	}
	s.rows++
	return nil
}

// Rows is the number of records written so far.
func (s *StreamWriter) Rows() int { return s.rows }

func (s *StreamWriter) Close() error { return s.out.Commit() }

// Abort discards everything written.
func (s *StreamWriter) Abort() { s.out.Abort() }
