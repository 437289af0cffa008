package resolve

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is one raw cell from the source column. The zero Value is null.
type Value struct {
	Text  string
	Valid bool
}

// Null is the absent value.
var Null = Value{}

// Of wraps a present string, including "".
func Of(s string) Value { return Value{Text: s, Valid: true} }

// Coerce turns an arbitrary cell into a Value without failing: nil and NaN
// become null, numbers their shortest decimal form, anything else its
// fmt representation.
func Coerce(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null
	case Value:
		return x
	case string:
		return Of(x)
	case *string:
		if x == nil {
			return Null
		}
		return Of(*x)
	case []byte:
		if x == nil {
			return Null
		}
		return Of(string(x))
	case float64:
		return coerceFloat(x, 64)
	case float32:
		return coerceFloat(float64(x), 32)
	case json.Number:
		return Of(x.String())
	case fmt.Stringer:
		return Of(x.String())
	default:
		return Of(fmt.Sprint(x))
	}
}

func coerceFloat(f float64, bits int) Value {
	if math.IsNaN(f) {
		return Null
	}
	return Of(strconv.FormatFloat(f, 'f', -1, bits))
}

// Ptr returns nil for null and a pointer to the text otherwise.
func (v Value) Ptr() *string {
	if !v.Valid {
		return nil
	}
	s := v.Text
	return &s
}

// String renders null as "<null>" for logs and reports.
func (v Value) String() string {
	if !v.Valid {
		return "<null>"
	}
	return v.Text
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts null, strings and, for robustness against loosely
// typed producers, numbers and booleans.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Null
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Of(s)
		return nil
	}
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = Coerce(raw)
	return nil
}
