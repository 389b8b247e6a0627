package jsonlio

import (
	"github.com/wdm0006/rawify/pkg/record"
)

// WriteAll writes records to path, one JSON object per line.
func WriteAll(path string, recs []*record.Record) error {
	w, err := NewStreamWriter(path)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if err := w.Write(r); err != nil {
			w.Abort()
			return err
		}
	}
	return w.Close()
}
