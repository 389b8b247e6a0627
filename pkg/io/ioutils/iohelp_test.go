package ioutils

import (
    "io"
    "os"
    "path/filepath"
    "testing"
)

func TestAtomicCommitAndAbort(t *testing.T) {
    dir := t.TempDir()
    target := filepath.Join(dir, "out.jsonl")

    a, err := CreateAtomic(target)
    if err != nil { t.Fatal(err) }
    if _, err := a.Write([]byte("{}\n")); err != nil { t.Fatal(err) }
    if _, err := os.Stat(target); !os.IsNotExist(err) {
        t.Fatal("target must not exist before commit")
    }
    if err := a.Commit(); err != nil { t.Fatal(err) }
    a.Abort()
    b, err := os.ReadFile(target)
    if err != nil { t.Fatal(err) }
    if string(b) != "{}\n" { t.Fatalf("got %q", b) }

    a2, err := CreateAtomic(filepath.Join(dir, "aborted.jsonl"))
    if err != nil { t.Fatal(err) }
    _, _ = a2.Write([]byte("partial"))
    a2.Abort()
    entries, _ := os.ReadDir(dir)
    if len(entries) != 1 {
        t.Fatalf("expected only the committed file, got %d entries", len(entries))
    }
}

func TestGzipRoundTrip(t *testing.T) {
    target := filepath.Join(t.TempDir(), "out.jsonl.gz")
    a, err := CreateAtomic(target)
    if err != nil { t.Fatal(err) }
    _, _ = a.Write([]byte("hello\n"))
    if err := a.Commit(); err != nil { t.Fatal(err) }
    r, err := OpenMaybeCompressed(target)
    if err != nil { t.Fatal(err) }
    defer func() { _ = r.Close() }()
    b, err := io.ReadAll(r)
    if err != nil { t.Fatal(err) }
    if string(b) != "hello\n" { t.Fatalf("got %q", b) }
}
