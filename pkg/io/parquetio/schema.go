package parquetio

import (
    "fmt"
    "os"

    parquet "github.com/segmentio/parquet-go"
    "github.com/segmentio/parquet-go/deprecated"
    "github.com/segmentio/parquet-go/format"

    "github.com/wdm0006/rawify/pkg/record"
)

// openFile opens path and parses its footer. Errors from os.Open are
// returned unwrapped so callers can test them with os.IsNotExist.
func openFile(path string) (*os.File, *parquet.File, error) {
    f, err := os.Open(path)
    if err != nil { return nil, nil, err }
    st, err := f.Stat()
    if err != nil { _ = f.Close(); return nil, nil, err }
    pf, err := parquet.OpenFile(f, st.Size())
    if err != nil { _ = f.Close(); return nil, nil, fmt.Errorf("parquet open: %w", err) }
    return f, pf, nil
}

// ReadSchema reads only the footer of a Parquet file and returns its
// schema and row count.
func ReadSchema(path string) (record.Schema, int64, error) {
    f, pf, err := openFile(path)
    if err != nil { return record.Schema{}, 0, err }
    defer func() { _ = f.Close() }()
    g := fileGroups(pf.Metadata())
    return record.Schema{Columns: g.columns("", pf.Schema().Fields())}, pf.NumRows(), nil
}

// groups holds the LIST and MAP annotations of group fields keyed by
// field path. Groups opened from a file do not report a logical type
// through parquet.Node, so the footer's schema elements are consulted.
type groups map[string]*format.LogicalType

func fileGroups(md *format.FileMetaData) groups {
    g := groups{}
    elems := md.Schema
    i := 0
    var walk func(path string)
    walk = func(path string) {
        e := &elems[i]
        i++
        for c := int32(0); c < e.NumChildren && i < len(elems); c++ {
            child := &elems[i]
            p := fieldPath(path, child.Name)
            if child.NumChildren > 0 {
                if lt := groupLogical(child); lt != nil { g[p] = lt }
            }
            walk(p)
        }
    }
    if len(elems) > 0 { walk("") }
    return g
}

func groupLogical(e *format.SchemaElement) *format.LogicalType {
    if lt := e.LogicalType; lt != nil && (lt.List != nil || lt.Map != nil) { return lt }
    if ct := e.ConvertedType; ct != nil {
        switch *ct {
        case deprecated.List:
            return &format.LogicalType{List: &format.ListType{}}
        case deprecated.Map, deprecated.MapKeyValue:
            return &format.LogicalType{Map: &format.MapType{}}
        }
    }
    return nil
}

func fieldPath(parent, name string) string {
    if parent == "" { return name }
    return parent + "\x00" + name
}

// logical returns the logical type of the field at path.
func (g groups) logical(path string, n parquet.Node) *format.LogicalType {
    if !n.Leaf() {
        if lt, ok := g[path]; ok { return lt }
    }
    if t := n.Type(); t != nil { return t.LogicalType() }
    return nil
}

func (g groups) columns(parent string, fields []parquet.Field) []record.ColumnSchema {
    cols := make([]record.ColumnSchema, len(fields))
    for i, f := range fields {
        cs := record.ColumnSchema{Name: f.Name(), Nullable: f.Optional(), Repeated: f.Repeated()}
        path := fieldPath(parent, f.Name())
        lt := g.logical(path, f)
        if f.Leaf() {
            typ := f.Type()
            cs.Type = leafKind(typ.Kind(), lt)
            cs.Physical = typ.Kind().String()
            cs.Logical, cs.Scale, cs.Precision = logicalName(lt)
        } else {
            cs.Type = record.KindObject
            switch {
            case lt != nil && lt.List != nil:
                cs.Type, cs.Logical = record.KindArray, "LIST"
            case lt != nil && lt.Map != nil:
                cs.Logical = "MAP"
            }
            cs.Fields = g.columns(path, f.Fields())
        }
        cols[i] = cs
    }
    return cols
}

func leafKind(k parquet.Kind, lt *format.LogicalType) record.Kind {
    if lt != nil {
        switch {
        case lt.Decimal != nil:
            return record.KindNumber
        case lt.Date != nil, lt.Time != nil, lt.Timestamp != nil, lt.UUID != nil:
            return record.KindString
        case lt.Integer != nil:
            return record.KindInt
        case lt.Unknown != nil:
            return record.KindNull
        }
    }
    switch k {
    case parquet.Boolean:
        return record.KindBool
    case parquet.Int32, parquet.Int64:
        return record.KindInt
    case parquet.Float, parquet.Double:
        return record.KindFloat
    default:
        // byte arrays and INT96 timestamps are rendered as strings
        return record.KindString
    }
}

func timeUnit(u format.TimeUnit) string {
    switch {
    case u.Nanos != nil:
        return "NANOS"
    case u.Micros != nil:
        return "MICROS"
    default:
        return "MILLIS"
    }
}

// logicalName returns the annotation shown in schema listings.
func logicalName(lt *format.LogicalType) (name string, scale, precision int) {
    if lt == nil { return "", 0, 0 }
    switch {
    case lt.Decimal != nil:
        return "DECIMAL", int(lt.Decimal.Scale), int(lt.Decimal.Precision)
    case lt.Date != nil:
        return "DATE", 0, 0
    case lt.Timestamp != nil:
        return "TIMESTAMP_" + timeUnit(lt.Timestamp.Unit), 0, 0
    case lt.Time != nil:
        return "TIME_" + timeUnit(lt.Time.Unit), 0, 0
    case lt.Integer != nil && !lt.Integer.IsSigned:
        return fmt.Sprintf("UINT_%d", lt.Integer.BitWidth), 0, 0
    case lt.UUID != nil:
        return "UUID", 0, 0
    case lt.Json != nil:
        return "JSON", 0, 0
    case lt.Enum != nil:
        return "ENUM", 0, 0
    }
    return "", 0, 0
}
