package inspect

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wdm0006/rawify/pkg/io/parquetio"
	"github.com/wdm0006/rawify/pkg/record"
)

func fixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "x.parquet")
	schema := record.Schema{Columns: []record.ColumnSchema{
		{Name: "id", Type: record.KindInt},
		{Name: "v", Type: record.KindString, Nullable: true},
	}}
	recs := []*record.Record{
		record.FromFields(record.Field{Name: "id", Value: record.Int(1)}, record.Field{Name: "v", Value: record.String("p")}),
		record.FromFields(record.Field{Name: "id", Value: record.Int(2)}, record.Field{Name: "v", Value: record.String("p")}),
		record.FromFields(record.Field{Name: "id", Value: record.Int(3)}),
	}
	if err := parquetio.WriteAll(path, schema, recs); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspectRow(t *testing.T) {
	path := fixture(t)
	idx := int64(1)
	var out bytes.Buffer
	if err := Inspect(path, Options{Index: &idx}, &out); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	for _, want := range []string{"(3 rows)", "id: int", "v: string", `Row at index 1: {"id":2,"v":"p"}`} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
}

func TestInspectIndexOutOfRange(t *testing.T) {
	path := fixture(t)
	idx := int64(10)
	var out bytes.Buffer
	if err := Inspect(path, Options{Index: &idx}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Index 10 is out of range. File has 3 rows.") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestInspectProfile(t *testing.T) {
	path := fixture(t)
	var out bytes.Buffer
	if err := Inspect(path, Options{Profile: true, TopK: 1}, &out); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.Contains(s, "- id (int): count=3 nulls=0 min=1 max=3 mean=2") {
		t.Errorf("missing numeric profile:\n%s", s)
	}
	if !strings.Contains(s, "- v (string): count=2 nulls=1") || !strings.Contains(s, `"p": 2`) {
		t.Errorf("missing string profile:\n%s", s)
	}
}

func TestInspectMissingFile(t *testing.T) {
	var out bytes.Buffer
	err := Inspect(filepath.Join(t.TempDir(), "nope.parquet"), Options{}, &out)
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist, got %v", err)
	}
}

func TestInspectDecimalColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dec.parquet")
	schema := record.Schema{Columns: []record.ColumnSchema{
		{Name: "price", Type: record.KindNumber, Logical: "DECIMAL", Scale: 2, Precision: 10},
	}}
	recs := []*record.Record{
		record.FromFields(record.Field{Name: "price", Value: record.Int(1)}),
		record.FromFields(record.Field{Name: "price", Value: record.Int(3)}),
	}
	if err := parquetio.WriteAll(path, schema, recs); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := Inspect(path, Options{Profile: true}, &out); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.Contains(s, "price: number (INT64, DECIMAL(10,2))") {
		t.Errorf("missing decimal schema line:\n%s", s)
	}
	if !strings.Contains(s, "- price (number): count=2 nulls=0 min=1 max=3 mean=2") {
		t.Errorf("missing decimal profile:\n%s", s)
	}
}
