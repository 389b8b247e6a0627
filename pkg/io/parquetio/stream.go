package parquetio

import (
    "github.com/wdm0006/rawify/pkg/record"
)

const defaultChunk = 1024

// StreamReader reads Parquet rows in chunks of records.
type StreamReader struct {
    r         *Reader
    chunkSize int
}

func NewStreamReader(path string, chunkSize int) (*StreamReader, error) {
    rd, err := OpenReader(path)
    if err != nil { return nil, err }
    if chunkSize <= 0 { chunkSize = defaultChunk }
    return &StreamReader{r: rd, chunkSize: chunkSize}, nil
}

func (s *StreamReader) Close() error { return s.r.Close() }

func (s *StreamReader) Schema() record.Schema { return s.r.Schema() }

// Next returns the next chunk; an empty chunk means the file is exhausted.
func (s *StreamReader) Next() ([]*record.Record, error) {
    return s.r.read(int64(s.chunkSize))
}
