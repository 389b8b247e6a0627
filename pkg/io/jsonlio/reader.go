package jsonlio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	iox "github.com/wdm0006/rawify/pkg/io/ioutils"
	"github.com/wdm0006/rawify/pkg/record"
)

// LineReader yields raw lines one at a time without a length limit.
type LineReader struct {
	r *bufio.Reader
}

func NewLineReader(r io.Reader) *LineReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &LineReader{r: br}
	}
	return &LineReader{r: bufio.NewReader(r)}
}

// Open opens path (gzip aware) for line reading. The caller closes the
// returned Closer.
func Open(path string) (*LineReader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewLineReader(rc), rc, nil
}

// Next returns the next line including its terminator. A final line
// without a newline is returned as is; io.EOF follows.
func (l *LineReader) Next() (string, error) {
	line, err := l.r.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", io.EOF
		}
		return line, nil
	}
	return line, err
}

// ReadAll decodes every line of path as a record. Unlike the streaming
// augmenter it fails on the first malformed line.
func ReadAll(path string) ([]*record.Record, error) {
	lr, c, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()
	var out []*record.Record
	for n := 1; ; n++ {
		line, err := lr.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		rec, err := record.Decode([]byte(strings.TrimSpace(line)))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, n, err)
		}
		out = append(out, rec)
	}
}
