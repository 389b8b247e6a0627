package parquetio

import (
    "errors"
    "fmt"
    "io"
    "os"

    parquet "github.com/segmentio/parquet-go"

    "github.com/wdm0006/rawify/pkg/record"
)

// Reader decodes the rows of a Parquet file into records without a
// predeclared Go type. Keys are the column names stored in the file, in
// schema order.
type Reader struct {
    file   *os.File
    reader *parquet.Reader
    schema record.Schema
    nodes  []*node
    leaves int
    rows   int64
    next   int64
    buf    []parquet.Row
}

func OpenReader(path string) (*Reader, error) {
    f, pf, err := openFile(path)
    if err != nil { return nil, err }
    fields := pf.Schema().Fields()
    g := fileGroups(pf.Metadata())
    nodes := g.buildNodes(fields)
    leaves := 0
    for _, n := range nodes { leaves += n.leaves }
    return &Reader{
        file:   f,
        reader: parquet.NewReader(pf),
        schema: record.Schema{Columns: g.columns("", fields)},
        nodes:  nodes,
        leaves: leaves,
        rows:   pf.NumRows(),
    }, nil
}

func (r *Reader) Close() error {
    _ = r.reader.Close()
    return r.file.Close()
}

func (r *Reader) Schema() record.Schema { return r.schema }

func (r *Reader) NumRows() int64 { return r.rows }

// ReadAll loads every remaining row in file order.
func (r *Reader) ReadAll() ([]*record.Record, error) {
    out := make([]*record.Record, 0, r.rows-r.next)
    sr := &StreamReader{r: r, chunkSize: defaultChunk}
    for {
        recs, err := sr.Next()
        if err != nil { return nil, err }
        if len(recs) == 0 { break }
        out = append(out, recs...)
    }
    return out, nil
}

// ReadRow returns the row at index, counted from the start of the file.
// Reading continues from the row after it.
func (r *Reader) ReadRow(index int64) (*record.Record, error) {
    if index < 0 || index >= r.rows {
        return nil, fmt.Errorf("row %d out of range [0,%d)", index, r.rows)
    }
    if index != r.next {
        if err := r.reader.SeekToRow(index); err != nil { return nil, fmt.Errorf("parquet seek to row %d: %w", index, err) }
        r.next = index
    }
    recs, err := r.read(1)
    if err != nil { return nil, err }
    return recs[0], nil
}

func (r *Reader) read(n int64) ([]*record.Record, error) {
    if remain := r.rows - r.next; n > remain { n = remain }
    if n <= 0 { return nil, nil }
    if int64(cap(r.buf)) < n { r.buf = make([]parquet.Row, n) }
    buf := r.buf[:n]
    got, err := r.reader.ReadRows(buf)
    if err != nil && !errors.Is(err, io.EOF) { return nil, fmt.Errorf("parquet read rows: %w", err) }
    if got == 0 {
        return nil, fmt.Errorf("parquet read rows: no rows at %d of %d", r.next, r.rows)
    }
    out := make([]*record.Record, got)
    for i, row := range buf[:got] {
        rec, err := rowRecord(row, r.nodes, r.leaves)
        if err != nil { return nil, fmt.Errorf("row %d: %w", r.next+int64(i), err) }
        out[i] = rec
    }
    r.next += int64(got)
    return out, nil
}
