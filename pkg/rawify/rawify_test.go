package rawify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/wdm0006/rawify/pkg/io/parquetio"
	"github.com/wdm0006/rawify/pkg/pipeline"
	"github.com/wdm0006/rawify/pkg/record"
)

func writeFixture(t *testing.T, path string, ids []int64, vs []string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	schema := record.Schema{Columns: []record.ColumnSchema{
		{Name: "id", Type: record.KindInt},
		{Name: "v", Type: record.KindString, Nullable: true},
	}}
	recs := make([]*record.Record, len(ids))
	for i := range ids {
		recs[i] = record.FromFields(record.Field{Name: "id", Value: record.Int(ids[i])}, record.Field{Name: "v", Value: record.String(vs[i])})
	}
	if err := parquetio.WriteAll(path, schema, recs); err != nil {
		t.Fatal(err)
	}
}

func quietOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestConvertTree(t *testing.T) {
	convey.Convey("Given a dataset root with nested parquet files", t, func() {
		root := t.TempDir()
		in := filepath.Join(root, "data")
		out := filepath.Join(root, "out")
		writeFixture(t, filepath.Join(in, "a", "x.parquet"), []int64{1, 2}, []string{"p", "q"})
		writeFixture(t, filepath.Join(in, "b", "c", "y.parquet"), []int64{3}, []string{"ünï"})
		convey.So(os.WriteFile(filepath.Join(in, "a", "notes.txt"), []byte("ignored"), 0o644), convey.ShouldBeNil)

		convey.Convey("Converting mirrors the tree with one jsonl per parquet file", func() {
			sum, err := ConvertTree(context.Background(), in, out, quietOptions())
			convey.So(err, convey.ShouldBeNil)
			convey.So(sum.Done, convey.ShouldEqual, 2)
			convey.So(sum.Failed, convey.ShouldEqual, 0)

			b, err := os.ReadFile(filepath.Join(out, "a", "x.jsonl"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(b), convey.ShouldEqual, "{\"id\":1,\"v\":\"p\"}\n{\"id\":2,\"v\":\"q\"}\n")

			b, err = os.ReadFile(filepath.Join(out, "b", "c", "y.jsonl"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(b), convey.ShouldEqual, "{\"id\":3,\"v\":\"ünï\"}\n")

			_, err = os.Stat(filepath.Join(out, "a", "notes.jsonl"))
			convey.So(os.IsNotExist(err), convey.ShouldBeTrue)

			convey.Convey("Running again yields byte-identical output", func() {
				first, _ := os.ReadFile(filepath.Join(out, "a", "x.jsonl"))
				sum2, err := ConvertTree(context.Background(), in, out, quietOptions())
				convey.So(err, convey.ShouldBeNil)
				convey.So(sum2.Done, convey.ShouldEqual, 2)
				second, _ := os.ReadFile(filepath.Join(out, "a", "x.jsonl"))
				convey.So(bytes.Equal(first, second), convey.ShouldBeTrue)
			})
		})

		convey.Convey("A corrupt file is skipped and the rest still converts", func() {
			bad := filepath.Join(in, "a", "broken.parquet")
			convey.So(os.WriteFile(bad, []byte("PAR1 garbage"), 0o644), convey.ShouldBeNil)
			var logs bytes.Buffer
			sum, err := ConvertTree(context.Background(), in, out, Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})
			convey.So(err, convey.ShouldBeNil)
			convey.So(sum.Done, convey.ShouldEqual, 2)
			convey.So(sum.Failed, convey.ShouldEqual, 1)
			convey.So(sum.Outcomes[0].Path, convey.ShouldEqual, bad)
			convey.So(errors.Is(sum.Outcomes[0].Err, pipeline.ErrMalformed), convey.ShouldBeTrue)
			convey.So(logs.String(), convey.ShouldContainSubstring, "broken.parquet")
			_, err = os.Stat(filepath.Join(out, "a", "broken.jsonl"))
			convey.So(os.IsNotExist(err), convey.ShouldBeTrue)
		})
	})
}

func TestConvertTreeMissingRoot(t *testing.T) {
	_, err := ConvertTree(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir(), quietOptions())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestConvertTreeEmptyFile(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "deep", "out")
	writeFixture(t, filepath.Join(in, "empty.parquet"), nil, nil)
	sum, err := ConvertTree(context.Background(), in, out, quietOptions())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Done != 1 {
		t.Fatalf("unexpected summary %s", sum)
	}
	b, err := os.ReadFile(filepath.Join(out, "empty.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 0 {
		t.Fatalf("expected empty output, got %q", b)
	}
}

func TestOutputPath(t *testing.T) {
	got, err := OutputPath("/data", "/out", "/data/a/part.parquet.parquet")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/out", "a", "part.parquet.jsonl"); got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestConvertTreeKeepsColumnNames(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	schema := record.Schema{Columns: []record.ColumnSchema{
		{Name: "my-col", Type: record.KindString},
		{Name: "__index_level_0__", Type: record.KindInt},
		{Name: "Id", Type: record.KindInt},
	}}
	recs := []*record.Record{record.FromFields(
		record.Field{Name: "my-col", Value: record.String("a")},
		record.Field{Name: "__index_level_0__", Value: record.Int(0)},
		record.Field{Name: "Id", Value: record.Int(9)},
	)}
	if err := parquetio.WriteAll(filepath.Join(in, "frame.parquet"), schema, recs); err != nil {
		t.Fatal(err)
	}
	if _, err := ConvertTree(context.Background(), in, out, quietOptions()); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(out, "frame.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "{\"my-col\":\"a\",\"__index_level_0__\":0,\"Id\":9}\n"; string(b) != want {
		t.Fatalf("got %q, want %q", b, want)
	}
}
