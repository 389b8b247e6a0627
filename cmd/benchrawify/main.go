package main

import (
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "io"
    "log/slog"
    "math/rand"
    "os"
    "path/filepath"
    "runtime"
    "time"

    "github.com/wdm0006/rawify/pkg/augment"
    "github.com/wdm0006/rawify/pkg/io/parquetio"
    "github.com/wdm0006/rawify/pkg/rawify"
    "github.com/wdm0006/rawify/pkg/record"
)

var words = []string{"alpha", "beta", "gamma", "delta", "sum", "integral", "proof", "lemma", "x", "y"}

func sentence(rnd *rand.Rand, n int) string {
    b := make([]byte, 0, n*8)
    for i := 0; i < n; i++ {
        if i > 0 { b = append(b, ' ') }
        b = append(b, words[rnd.Intn(len(words))]...)
    }
    return string(b)
}

// generate writes files*rowsPerFile synthetic rows, split across subset dirs.
func generate(root string, files, rowsPerFile, subsets, textWords int, rnd *rand.Rand) error {
    schema := record.Schema{Columns: []record.ColumnSchema{
        {Name: "id", Type: record.KindInt},
        {Name: "input", Type: record.KindString},
        {Name: "output", Type: record.KindString},
        {Name: "score", Type: record.KindFloat, Nullable: true},
    }}
    id := int64(0)
    for f := 0; f < files; f++ {
        recs := make([]*record.Record, 0, rowsPerFile)
        for i := 0; i < rowsPerFile; i++ {
            score := record.Float(rnd.Float64())
            if rnd.Intn(20) == 0 { score = record.Null() }
            recs = append(recs, record.FromFields(
                record.Field{Name: "id", Value: record.Int(id)},
                record.Field{Name: "input", Value: record.String(sentence(rnd, textWords))},
                record.Field{Name: "output", Value: record.String(sentence(rnd, textWords))},
                record.Field{Name: "score", Value: score},
            ))
            id++
        }
        path := filepath.Join(root, fmt.Sprintf("subset-%02d", f%subsets), fmt.Sprintf("part_%06d.parquet", f))
        if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
        if err := parquetio.WriteAll(path, schema, recs); err != nil { return err }
    }
    return nil
}

func main() {
    var (
        files     = flag.Int("files", 8, "number of parquet files to generate")
        rows      = flag.Int("rows", 50_000, "rows per file")
        subsets   = flag.Int("subsets", 2, "number of subset directories")
        textWords = flag.Int("words", 32, "words per input/output value")
        keep      = flag.String("dir", "", "work directory (default: temporary, removed afterwards)")
        withAug   = flag.Bool("augment", true, "also run the augment phase on the first subset")
        jsonOut   = flag.Bool("json", false, "emit JSON summary")
        seed      = flag.Int64("seed", 42, "random seed")
    )
    flag.Parse()

    dir := *keep
    if dir == "" {
        tmp, err := os.MkdirTemp("", "benchrawify-")
        if err != nil { fmt.Fprintln(os.Stderr, err); os.Exit(1) }
        defer os.RemoveAll(tmp)
        dir = tmp
    }
    in := filepath.Join(dir, "data")
    out := filepath.Join(dir, "jsonl_output")

    genStart := time.Now()
    if err := generate(in, *files, *rows, *subsets, *textWords, rand.New(rand.NewSource(*seed))); err != nil {
        fmt.Fprintln(os.Stderr, err); os.Exit(1)
    }
    genElapsed := time.Since(genStart)

    quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

    // Warm up
    runtime.GC()
    time.Sleep(100 * time.Millisecond)

    var msBefore, msAfter runtime.MemStats
    runtime.ReadMemStats(&msBefore)
    start := time.Now()
    sum, err := rawify.ConvertTree(context.Background(), in, out, rawify.Options{Logger: quiet})
    if err != nil { fmt.Fprintln(os.Stderr, err); os.Exit(1) }
    elapsed := time.Since(start)
    runtime.ReadMemStats(&msAfter)

    var augElapsed time.Duration
    augLines := 0
    if *withAug {
        augStart := time.Now()
        asum, err := augment.AugmentDir(context.Background(), filepath.Join(out, "subset-00"), filepath.Join(dir, "augmented"), augment.Options{Logger: quiet})
        if err != nil { fmt.Fprintln(os.Stderr, err); os.Exit(1) }
        augElapsed = time.Since(augStart)
        augLines = asum.Done
    }

    total := *files * *rows
    rowsPerSec := float64(total) / elapsed.Seconds()
    summary := map[string]any{
        "files": *files,
        "rows": total,
        "converted_files": sum.Done,
        "failed_files": sum.Failed,
        "generate_ms": genElapsed.Milliseconds(),
        "elapsed_ms": elapsed.Milliseconds(),
        "rows_per_sec": rowsPerSec,
        "mem_alloc_bytes": msAfter.Alloc,
        "mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
        "gc_num": msAfter.NumGC - msBefore.NumGC,
        "augment_lines": augLines,
        "augment_ms": augElapsed.Milliseconds(),
    }

    if *jsonOut {
        b, _ := json.MarshalIndent(summary, "", "  ")
        fmt.Println(string(b))
        return
    }
    fmt.Printf("Files: %d (%d converted, %d failed)\n", *files, sum.Done, sum.Failed)
    fmt.Printf("Rows: %d\n", total)
    fmt.Printf("Generate: %s\n", genElapsed)
    fmt.Printf("Convert: %s\n", elapsed)
    fmt.Printf("Throughput: %.0f rows/s\n", rowsPerSec)
    fmt.Printf("Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
    fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
    fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
    if *withAug {
        fmt.Printf("Augment: %d lines in %s\n", augLines, augElapsed)
    }
}
