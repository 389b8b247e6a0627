package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// encoder writes compact JSON with HTML escaping disabled so that text
// such as "<" or non-ASCII runes is preserved literally.
type encoder struct {
	buf bytes.Buffer
	enc *json.Encoder
}

func newEncoder() *encoder {
	e := &encoder{}
	e.enc = json.NewEncoder(&e.buf)
	e.enc.SetEscapeHTML(false)
	return e
}

// encodeScalar appends x via encoding/json, minus the trailing newline.
func (e *encoder) encodeScalar(x any) error {
	if err := e.enc.Encode(x); err != nil {
		return err
	}
	e.buf.Truncate(e.buf.Len() - 1)
	return nil
}

func (e *encoder) value(v Value) error {
	switch v.kind {
	case KindNull:
		e.buf.WriteString("null")
	case KindBool:
		e.buf.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		e.buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			e.buf.WriteString("null")
			return nil
		}
		return e.encodeScalar(v.f)
	case KindNumber:
		e.buf.WriteString(v.s)
	case KindString:
		return e.encodeScalar(v.s)
	case KindArray:
		e.buf.WriteByte('[')
		for i, x := range v.arr {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.value(x); err != nil {
				return err
			}
		}
		e.buf.WriteByte(']')
	case KindObject:
		return e.record(v.obj)
	default:
		return fmt.Errorf("unknown value kind %d", v.kind)
	}
	return nil
}

func (e *encoder) record(r *Record) error {
	e.buf.WriteByte('{')
	if r != nil {
		for i, f := range r.fields {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.encodeScalar(f.Name); err != nil {
				return err
			}
			e.buf.WriteByte(':')
			if err := e.value(f.Value); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
	}
	e.buf.WriteByte('}')
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	e := newEncoder()
	if err := e.value(v); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

func (r *Record) MarshalJSON() ([]byte, error) {
	e := newEncoder()
	if err := e.record(r); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	x, err := DecodeValue(b)
	if err != nil {
		return err
	}
	*v = x
	return nil
}

func (r *Record) UnmarshalJSON(b []byte) error {
	x, err := Decode(b)
	if err != nil {
		return err
	}
	*r = *x
	return nil
}

// ErrNotObject is returned by Decode when the input is valid JSON but not an object.
var ErrNotObject = errors.New("json value is not an object")

// Decode parses exactly one JSON object, keeping key order and exact numbers.
func Decode(b []byte) (*Record, error) {
	v, err := DecodeValue(b)
	if err != nil {
		return nil, err
	}
	r, ok := v.Object()
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotObject, v.Kind())
	}
	return r, nil
}

// DecodeValue parses exactly one JSON value; trailing data is an error.
func DecodeValue(b []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, errors.New("invalid character after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return numberValue(t.String())
	case json.Delim:
		switch t {
		case '[':
			arr := []Value{}
			for dec.More() {
				x, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, x)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Array(arr...), nil
		case '{':
			r := NewRecord()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key %v", kt)
				}
				x, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				r.Set(key, x)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Object(r), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

// numberValue keeps int64-sized integers as KindInt and everything else
// as an exact literal.
func numberValue(lit string) (Value, error) {
	if !strings.ContainsAny(lit, ".eE") {
		if x, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return Int(x), nil
		}
	}
	return Number(lit)
}
