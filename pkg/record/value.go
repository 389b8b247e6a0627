package record

import (
	"fmt"
	"math"
	"strconv"
)

// Kind enumerates the variants a Value can hold.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a tagged variant holding one field value of a Record.
// The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string // string payload, or the literal for KindNumber
	arr  []Value
	obj  *Record
}

func Null() Value             { return Value{} }
func Bool(v bool) Value       { return Value{kind: KindBool, b: v} }
func Int(v int64) Value       { return Value{kind: KindInt, i: v} }
func Float(v float64) Value   { return Value{kind: KindFloat, f: v} }
func String(v string) Value   { return Value{kind: KindString, s: v} }
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }
func Object(r *Record) Value {
	if r == nil {
		r = NewRecord()
	}
	return Value{kind: KindObject, obj: r}
}

// Number keeps a JSON number literal verbatim so integers wider than
// int64 and decimal spellings survive a decode/encode cycle.
func Number(lit string) (Value, error) {
	if !isNumberLiteral(lit) {
		return Value{}, fmt.Errorf("invalid number literal %q", lit)
	}
	return Value{kind: KindNumber, s: lit}, nil
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool)      { return v.b, v.kind == KindBool }
func (v Value) Str() (string, bool)     { return v.s, v.kind == KindString }
func (v Value) Array() ([]Value, bool)  { return v.arr, v.kind == KindArray }
func (v Value) Object() (*Record, bool) { return v.obj, v.kind == KindObject }

// Int returns the value as int64 for KindInt and for integral number literals.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindNumber:
		x, err := strconv.ParseInt(v.s, 10, 64)
		return x, err == nil
	}
	return 0, false
}

// Float returns the value as float64 for any numeric kind.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	case KindNumber:
		x, err := strconv.ParseFloat(v.s, 64)
		return x, err == nil
	}
	return 0, false
}

// Equal reports deep equality. Numbers compare by value across numeric kinds.
func (v Value) Equal(o Value) bool {
	if isNumeric(v.kind) && isNumeric(o.kind) {
		if a, ok := v.Int(); ok {
			if b, ok := o.Int(); ok {
				return a == b
			}
		}
		a, _ := v.Float()
		b, _ := o.Float()
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.obj.Equal(o.obj)
	}
	return false
}

// Text renders the value for embedding in derived text: strings as-is,
// everything else as compact JSON.
func (v Value) Text() string {
	if v.kind == KindString {
		return v.s
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

func (v Value) String() string { return v.Text() }

func isNumeric(k Kind) bool { return k == KindInt || k == KindFloat || k == KindNumber }

// isNumberLiteral matches the JSON number grammar.
func isNumberLiteral(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	if i >= len(s) {
		return false
	}
	switch {
	case s[i] == '0':
		i++
	case s[i] >= '1' && s[i] <= '9':
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(s)
}
