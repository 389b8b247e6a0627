package parquetio

import (
    "fmt"
    "math"
    "math/big"
    "strconv"
    "strings"
    "time"

    "github.com/google/uuid"
    parquet "github.com/segmentio/parquet-go"
    "github.com/segmentio/parquet-go/format"

    "github.com/wdm0006/rawify/pkg/record"
)

type nodeKind int

const (
    leafNode nodeKind = iota
    groupNode
    listNode
    mapNode
)

// node mirrors one field of the file schema. Rows arrive as flat column
// values carrying repetition and definition levels; a node tree turns
// them back into nested records, keyed by the names stored in the file.
type node struct {
    name     string
    kind     nodeKind
    optional bool
    repeated bool
    convert  func(parquet.Value) record.Value
    fields   []*node // group children; [elem] for lists; [key, value] for maps
    leaves   int
}

func (g groups) buildNodes(fields []parquet.Field) []*node {
    out := make([]*node, len(fields))
    for i, f := range fields { out[i] = g.buildNode(f.Name(), f.Name(), f) }
    return out
}

func (g groups) buildNode(path, name string, f parquet.Node) *node {
    n := &node{name: name, optional: f.Optional(), repeated: f.Repeated()}
    if f.Leaf() {
        n.kind, n.convert, n.leaves = leafNode, converter(f.Type()), 1
        return n
    }
    lt := g.logical(path, f)
    children := f.Fields()
    switch {
    case lt != nil && lt.List != nil && len(children) == 1:
        rep := children[0]
        repPath := fieldPath(path, rep.Name())
        var elem *node
        if rep.Leaf() || len(rep.Fields()) != 1 {
            // two-level list: the repeated field is the element
            elem = g.buildNode(repPath, rep.Name(), rep)
            elem.repeated = false
        } else {
            inner := rep.Fields()[0]
            elem = g.buildNode(fieldPath(repPath, inner.Name()), inner.Name(), inner)
        }
        n.kind, n.fields, n.leaves = listNode, []*node{elem}, elem.leaves
    case lt != nil && lt.Map != nil && len(children) == 1 && len(children[0].Fields()) == 2:
        kvPath := fieldPath(path, children[0].Name())
        kv := children[0].Fields()
        n.kind = mapNode
        n.fields = []*node{
            g.buildNode(fieldPath(kvPath, kv[0].Name()), kv[0].Name(), kv[0]),
            g.buildNode(fieldPath(kvPath, kv[1].Name()), kv[1].Name(), kv[1]),
        }
        n.leaves = n.fields[0].leaves + n.fields[1].leaves
    default:
        n.kind = groupNode
        for _, c := range children {
            cn := g.buildNode(fieldPath(path, c.Name()), c.Name(), c)
            n.fields = append(n.fields, cn)
            n.leaves += cn.leaves
        }
    }
    return n
}

type levels struct {
    repetitionDepth int
    definitionLevel int
}

// rowRecord assembles a row read from the file into a record whose keys
// follow the schema order.
func rowRecord(row parquet.Row, fields []*node, numLeaves int) (*record.Record, error) {
    cols := make([][]parquet.Value, numLeaves)
    row.Range(func(i int, vals []parquet.Value) bool {
        if i < len(cols) { cols[i] = vals }
        return true
    })
    for i, c := range cols {
        if len(c) == 0 { return nil, fmt.Errorf("no values for column %d", i) }
    }
    return decodeFields(fields, levels{}, cols)
}

func decodeFields(fields []*node, lv levels, cols [][]parquet.Value) (*record.Record, error) {
    rec := record.NewRecord()
    off := 0
    for _, f := range fields {
        v, err := f.decode(lv, cols[off:off+f.leaves])
        if err != nil { return nil, fmt.Errorf("%s: %w", f.name, err) }
        rec.Set(f.name, v)
        off += f.leaves
    }
    return rec, nil
}

func (n *node) decode(lv levels, cols [][]parquet.Value) (record.Value, error) {
    switch {
    case n.optional:
        lv.definitionLevel++
        if cols[0][0].DefinitionLevel() < lv.definitionLevel { return record.Null(), nil }
    case n.repeated:
        var out []record.Value
        err := eachRepeated(lv, cols, func(lv levels, part [][]parquet.Value) error {
            v, err := n.decodeRequired(lv, part)
            out = append(out, v)
            return err
        })
        return record.Array(out...), err
    }
    return n.decodeRequired(lv, cols)
}

func (n *node) decodeRequired(lv levels, cols [][]parquet.Value) (record.Value, error) {
    switch n.kind {
    case leafNode:
        v := cols[0][0]
        if v.IsNull() { return record.Null(), nil }
        return n.convert(v), nil
    case listNode:
        elem := n.fields[0]
        var out []record.Value
        err := eachRepeated(lv, cols, func(lv levels, part [][]parquet.Value) error {
            v, err := elem.decode(lv, part)
            out = append(out, v)
            return err
        })
        return record.Array(out...), err
    case mapNode:
        key, val := n.fields[0], n.fields[1]
        rec := record.NewRecord()
        err := eachRepeated(lv, cols, func(lv levels, part [][]parquet.Value) error {
            k, err := key.decode(lv, part[:key.leaves])
            if err != nil { return err }
            v, err := val.decode(lv, part[key.leaves:])
            if err != nil { return err }
            rec.Set(k.Text(), v)
            return nil
        })
        return record.Object(rec), err
    default:
        rec, err := decodeFields(n.fields, lv, cols)
        if err != nil { return record.Value{}, err }
        return record.Object(rec), nil
    }
}

// eachRepeated splits the values of a repeated field into its elements
// and calls fn once per element. An empty or absent field calls fn zero
// times.
func eachRepeated(lv levels, cols [][]parquet.Value, fn func(levels, [][]parquet.Value) error) error {
    lv.repetitionDepth++
    lv.definitionLevel++
    if cols[0][0].DefinitionLevel() < lv.definitionLevel { return nil }

    rest := make([][]parquet.Value, len(cols))
    copy(rest, cols)
    part := make([][]parquet.Value, len(cols))
    for len(rest[0]) > 0 {
        for j, c := range rest {
            k := 1
            for k < len(c) && c[k].RepetitionLevel() > lv.repetitionDepth { k++ }
            if k > len(c) { k = len(c) }
            part[j], rest[j] = c[:k], c[k:]
        }
        if err := fn(lv, part); err != nil { return err }
    }
    return nil
}

const julianUnixEpoch = 2440588

// converter maps a stored leaf value to its record form, honouring the
// logical type so that decimals, dates and timestamps read as values
// rather than as their storage encoding.
func converter(t parquet.Type) func(parquet.Value) record.Value {
    lt := t.LogicalType()
    kind := t.Kind()
    if lt != nil {
        switch {
        case lt.Decimal != nil:
            scale := int(lt.Decimal.Scale)
            return func(v parquet.Value) record.Value { return decimalValue(v, kind, scale) }
        case lt.Date != nil:
            return func(v parquet.Value) record.Value {
                return record.String(time.Unix(int64(v.Int32())*86400, 0).UTC().Format("2006-01-02"))
            }
        case lt.Timestamp != nil:
            unit, utc := lt.Timestamp.Unit, lt.Timestamp.IsAdjustedToUTC
            return func(v parquet.Value) record.Value {
                ts := unitTime(v.Int64(), unit).UTC()
                if utc { return record.String(ts.Format(time.RFC3339Nano)) }
                return record.String(ts.Format("2006-01-02T15:04:05.999999999"))
            }
        case lt.Time != nil:
            unit := lt.Time.Unit
            return func(v parquet.Value) record.Value {
                var n int64
                if kind == parquet.Int32 { n = int64(v.Int32()) } else { n = v.Int64() }
                return record.String(unitTime(n, unit).UTC().Format("15:04:05.999999999"))
            }
        case lt.Integer != nil && !lt.Integer.IsSigned:
            if lt.Integer.BitWidth == 64 {
                return func(v parquet.Value) record.Value {
                    u := v.Uint64()
                    if u <= math.MaxInt64 { return record.Int(int64(u)) }
                    n, _ := record.Number(strconv.FormatUint(u, 10))
                    return n
                }
            }
            return func(v parquet.Value) record.Value { return record.Int(int64(v.Uint32())) }
        case lt.UUID != nil:
            return func(v parquet.Value) record.Value {
                id, err := uuid.FromBytes(v.ByteArray())
                if err != nil { return record.String(string(v.ByteArray())) }
                return record.String(id.String())
            }
        case lt.Unknown != nil:
            return func(parquet.Value) record.Value { return record.Null() }
        }
    }
    switch kind {
    case parquet.Boolean:
        return func(v parquet.Value) record.Value { return record.Bool(v.Boolean()) }
    case parquet.Int32:
        return func(v parquet.Value) record.Value { return record.Int(int64(v.Int32())) }
    case parquet.Int64:
        return func(v parquet.Value) record.Value { return record.Int(v.Int64()) }
    case parquet.Int96:
        return func(v parquet.Value) record.Value {
            x := v.Int96()
            nanos := int64(uint64(x[1])<<32 | uint64(x[0]))
            ts := time.Unix((int64(x[2])-julianUnixEpoch)*86400, nanos).UTC()
            return record.String(ts.Format(time.RFC3339Nano))
        }
    case parquet.Float:
        return func(v parquet.Value) record.Value {
            // go through the shortest float32 spelling so 0.1 stays 0.1
            f, _ := strconv.ParseFloat(strconv.FormatFloat(float64(v.Float()), 'g', -1, 32), 64)
            return record.Float(f)
        }
    case parquet.Double:
        return func(v parquet.Value) record.Value { return record.Float(v.Double()) }
    default:
        return func(v parquet.Value) record.Value { return record.String(string(v.ByteArray())) }
    }
}

func unitTime(n int64, u format.TimeUnit) time.Time {
    switch {
    case u.Nanos != nil:
        return time.Unix(0, n)
    case u.Micros != nil:
        return time.UnixMicro(n)
    default:
        return time.UnixMilli(n)
    }
}

// decimalValue renders the unscaled integer as an exact decimal literal.
func decimalValue(v parquet.Value, kind parquet.Kind, scale int) record.Value {
    var unscaled *big.Int
    switch kind {
    case parquet.Int32:
        unscaled = big.NewInt(int64(v.Int32()))
    case parquet.Int64:
        unscaled = big.NewInt(v.Int64())
    default:
        // big-endian two's complement
        b := v.ByteArray()
        unscaled = new(big.Int).SetBytes(b)
        if len(b) > 0 && b[0]&0x80 != 0 {
            unscaled.Sub(unscaled, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
        }
    }
    n, err := record.Number(decimalLiteral(unscaled, scale))
    if err != nil { return record.String(decimalLiteral(unscaled, scale)) }
    return n
}

func decimalLiteral(unscaled *big.Int, scale int) string {
    digits := new(big.Int).Abs(unscaled).String()
    sign := ""
    if unscaled.Sign() < 0 { sign = "-" }
    if scale <= 0 { return sign + digits + strings.Repeat("0", -scale) }
    if len(digits) <= scale { digits = strings.Repeat("0", scale-len(digits)+1) + digits }
    return sign + digits[:len(digits)-scale] + "." + digits[len(digits)-scale:]
}
