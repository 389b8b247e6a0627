package parquetio

import (
    "path/filepath"
    "testing"

    "github.com/wdm0006/rawify/pkg/record"
)

func BenchmarkParquetReadAll(b *testing.B) {
    path := filepath.Join(b.TempDir(), "bench.parquet")
    recs := make([]*record.Record, 50000)
    for i := range recs { recs[i] = row(int64(i), "x", float64(i%100), i%2 == 0) }
    if err := WriteAll(path, idValueSchema(), recs); err != nil { b.Fatal(err) }
    b.ResetTimer()
    for i := 0; i < b.N; i++ {
        rd, err := OpenReader(path)
        if err != nil { b.Fatal(err) }
        _, _ = rd.ReadAll()
        _ = rd.Close()
    }
}
