package inspect

import (
    "fmt"
    "math"
    "sort"
    "strings"

    "github.com/wdm0006/rawify/pkg/record"
)

type NumStats struct {
    Count int     `json:"count"`
    Min   float64 `json:"min"`
    Max   float64 `json:"max"`
    Sum   float64 `json:"sum"`
}

type BoolStats struct {
    True  int `json:"true"`
    False int `json:"false"`
}

type StringStats struct {
    Count int            `json:"count"`
    Freqs map[string]int `json:"-"`
}

// ColumnProfile accumulates statistics for one top-level column.
type ColumnProfile struct {
    Name  string
    Kind  record.Kind
    Count int
    Nulls int
    Num   *NumStats
    Bool  *BoolStats
    Str   *StringStats
}

type Collector struct {
    cols  []ColumnProfile
    index map[string]int
    topK  int
}

func NewCollector(schema record.Schema, topK int) *Collector {
    c := &Collector{index: make(map[string]int), topK: topK}
    c.cols = make([]ColumnProfile, len(schema.Columns))
    for i, cs := range schema.Columns {
        cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
        if !cs.Repeated {
            switch cs.Type {
            case record.KindFloat, record.KindInt, record.KindNumber:
                cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
            case record.KindBool:
                cp.Bool = &BoolStats{}
            case record.KindString:
                cp.Str = &StringStats{Freqs: make(map[string]int)}
            }
        }
        c.cols[i] = cp
        c.index[cs.Name] = i
    }
    return c
}

func (c *Collector) Consume(r *record.Record) {
    for i := range c.cols {
        cp := &c.cols[i]
        v, ok := r.Get(cp.Name)
        if !ok || v.IsNull() { cp.Nulls++; continue }
        cp.Count++
        switch {
        case cp.Num != nil:
            if x, ok := v.Float(); ok {
                cp.Num.Count++
                if x < cp.Num.Min { cp.Num.Min = x }
                if x > cp.Num.Max { cp.Num.Max = x }
                cp.Num.Sum += x
            }
        case cp.Bool != nil:
            if b, ok := v.Bool(); ok {
                if b { cp.Bool.True++ } else { cp.Bool.False++ }
            }
        case cp.Str != nil:
            if s, ok := v.Str(); ok {
                cp.Str.Count++
                if c.topK > 0 { cp.Str.Freqs[s]++ }
            }
        }
    }
}

func (c *Collector) Columns() []ColumnProfile { return c.cols }

func (c *Collector) ReportText() string {
    var b strings.Builder
    b.WriteString("Profile Summary\n")
    for _, cp := range c.cols {
        fmt.Fprintf(&b, "- %s (%s): count=%d nulls=%d", cp.Name, cp.Kind, cp.Count, cp.Nulls)
        switch {
        case cp.Num != nil:
            if cp.Num.Count == 0 { b.WriteByte('\n'); continue }
            mean := cp.Num.Sum / float64(cp.Num.Count)
            fmt.Fprintf(&b, " min=%.6g max=%.6g mean=%.6g\n", cp.Num.Min, cp.Num.Max, mean)
        case cp.Bool != nil:
            fmt.Fprintf(&b, " true=%d false=%d\n", cp.Bool.True, cp.Bool.False)
        default:
            b.WriteByte('\n')
            if cp.Str != nil && len(cp.Str.Freqs) > 0 {
                type kv struct{ k string; v int }
                arr := make([]kv, 0, len(cp.Str.Freqs))
                for k, v := range cp.Str.Freqs { arr = append(arr, kv{k, v}) }
                sort.Slice(arr, func(i, j int) bool {
                    if arr[i].v != arr[j].v { return arr[i].v > arr[j].v }
                    return arr[i].k < arr[j].k
                })
                n := c.topK
                if n <= 0 || n > len(arr) { n = len(arr) }
                for i := 0; i < n; i++ {
                    fmt.Fprintf(&b, "  • %q: %d\n", arr[i].k, arr[i].v)
                }
            }
        }
    }
    return b.String()
}
