package record

import (
	"fmt"
	"strings"
)

// Schema describes the named, typed fields of a columnar file.
type Schema struct {
	Columns []ColumnSchema
}

// ColumnSchema describes one field. Physical is the storage type name as
// reported by the file (e.g. INT64, BYTE_ARRAY). Logical names the
// annotation that changes how stored values read (DATE, DECIMAL,
// TIMESTAMP_MILLIS, LIST, ...); Scale and Precision apply to DECIMAL.
type ColumnSchema struct {
	Name      string
	Type      Kind
	Physical  string
	Logical   string
	Scale     int
	Precision int
	Nullable  bool
	Repeated  bool
	Fields    []ColumnSchema // set for KindObject and KindArray
}

func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Text renders the schema as an indented tree, one field per line.
func (s Schema) Text() string {
	var b strings.Builder
	writeColumns(&b, s.Columns, 0)
	return b.String()
}

func writeColumns(b *strings.Builder, cols []ColumnSchema, depth int) {
	for _, c := range cols {
		b.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(b, "%s: %s", c.Name, c.Type)
		switch {
		case c.Logical == "DECIMAL":
			fmt.Fprintf(b, " (%s, DECIMAL(%d,%d))", c.Physical, c.Precision, c.Scale)
		case c.Physical != "" && c.Logical != "":
			fmt.Fprintf(b, " (%s, %s)", c.Physical, c.Logical)
		case c.Physical != "":
			fmt.Fprintf(b, " (%s)", c.Physical)
		case c.Logical != "":
			fmt.Fprintf(b, " (%s)", c.Logical)
		}
		switch {
		case c.Repeated:
			b.WriteString(" repeated")
		case c.Nullable:
			b.WriteString(" optional")
		}
		b.WriteByte('\n')
		writeColumns(b, c.Fields, depth+1)
	}
}
