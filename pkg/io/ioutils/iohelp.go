package ioutils

import (
    "bufio"
    "compress/gzip"
    "errors"
    "io"
    "os"
    "path/filepath"
)

// OpenMaybeCompressed opens a file and returns a reader. If the input
// appears to be gzip (by extension or magic), it wraps with gzip.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
    f, err := os.Open(path)
    if err != nil { return nil, err }
    br := bufio.NewReaderSize(f, 64*1024)
    b, err := br.Peek(2)
    gz := filepath.Ext(path) == ".gz" || (err == nil && b[0] == 0x1f && b[1] == 0x8b)
    if gz {
        zr, err := gzip.NewReader(br)
        if err != nil { _ = f.Close(); return nil, err }
        return readCloser{Reader: zr, closeFn: func() error { _ = zr.Close(); return f.Close() }}, nil
    }
    return readCloser{Reader: br, closeFn: f.Close}, nil
}

// AtomicFile buffers writes into a temporary sibling of the target path
// and moves it into place on Commit. Readers never observe a partially
// written target. Paths ending in .gz are gzip compressed.
type AtomicFile struct {
    path string
    tmp  *os.File
    bw   *bufio.Writer
    zw   *gzip.Writer
    w    io.Writer
    done bool
}

func CreateAtomic(path string) (*AtomicFile, error) {
    tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
    if err != nil { return nil, err }
    a := &AtomicFile{path: path, tmp: tmp, bw: bufio.NewWriterSize(tmp, 64*1024)}
    a.w = a.bw
    if filepath.Ext(path) == ".gz" {
        a.zw = gzip.NewWriter(a.bw)
        a.w = a.zw
    }
    return a, nil
}

func (a *AtomicFile) Write(p []byte) (int, error) { return a.w.Write(p) }

// Commit flushes the data and renames the temporary file onto the target.
func (a *AtomicFile) Commit() error {
    if a.done { return errors.New("atomic file already closed") }
    a.done = true
    if a.zw != nil {
        if err := a.zw.Close(); err != nil { a.discard(); return err }
    }
    if err := a.bw.Flush(); err != nil { a.discard(); return err }
    if err := a.tmp.Close(); err != nil { _ = os.Remove(a.tmp.Name()); return err }
    if err := os.Chmod(a.tmp.Name(), 0o644); err != nil { _ = os.Remove(a.tmp.Name()); return err }
    if err := os.Rename(a.tmp.Name(), a.path); err != nil { _ = os.Remove(a.tmp.Name()); return err }
    return nil
}

// Abort drops the temporary file. It is a no-op after Commit.
func (a *AtomicFile) Abort() {
    if a.done { return }
    a.done = true
    a.discard()
}

func (a *AtomicFile) discard() {
    _ = a.tmp.Close()
    _ = os.Remove(a.tmp.Name())
}

type readCloser struct{
    io.Reader
    closeFn func() error
}
func (r readCloser) Close() error {
    if r.closeFn != nil { return r.closeFn() }
    return errors.New("no closeFn")
}
