package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	NullValue ValueKind = iota
	StringValue
	IntValue
	FloatValue
	BoolValue
	ArrayValue
	ObjectValue
)

func (k ValueKind) String() string {
	switch k {
	case NullValue:
		return "null"
	case StringValue:
		return "string"
	case IntValue, FloatValue:
		return "number"
	case BoolValue:
		return "boolean"
	case ArrayValue:
		return "array"
	case ObjectValue:
		return "object"
	}
	return "unknown"
}

// Value is a schemaless result value: null, string, number, boolean,
// array of values or object of named values. The zero Value is null.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
	b    bool
	arr  []Value
	obj  Object
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps s.
func String(s string) Value { return Value{kind: StringValue, s: s} }

// Int wraps an integer number.
func Int(i int64) Value { return Value{kind: IntValue, i: i} }

// Float wraps a floating point number.
func Float(f float64) Value { return Value{kind: FloatValue, f: f} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: BoolValue, b: b} }

// Array wraps a sequence of values.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: ArrayValue, arr: items}
}

// ObjectOf wraps an object.
func ObjectOf(o Object) Value { return Value{kind: ObjectValue, obj: o} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == NullValue }

// Str returns the string payload.
func (v Value) Str() (string, bool) { return v.s, v.kind == StringValue }

// Int64 returns the integer payload; floats with no fractional part convert.
func (v Value) Int64() (int64, bool) {
	switch v.kind {
	case IntValue:
		return v.i, true
	case FloatValue:
		if v.f == math.Trunc(v.f) {
			return int64(v.f), true
		}
	}
	return 0, false
}

// Float64 returns the numeric payload as float64.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case IntValue:
		return float64(v.i), true
	case FloatValue:
		return v.f, true
	}
	return 0, false
}

// Boolean returns the boolean payload.
func (v Value) Boolean() (bool, bool) { return v.b, v.kind == BoolValue }

// Items returns the array payload.
func (v Value) Items() ([]Value, bool) { return v.arr, v.kind == ArrayValue }

// Object returns the object payload.
func (v Value) Object() (Object, bool) { return v.obj, v.kind == ObjectValue }

// Len returns the number of elements of an array or object, 1 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case ArrayValue:
		return len(v.arr)
	case ObjectValue:
		return len(v.obj)
	}
	return 1
}

// Equal reports deep equality. Int and float payloads of equal numeric value are equal.
func (v Value) Equal(o Value) bool {
	if a, ok := v.Float64(); ok {
		b, ok := o.Float64()
		return ok && a == b
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case NullValue:
		return true
	case StringValue:
		return v.s == o.s
	case BoolValue:
		return v.b == o.b
	case ArrayValue:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case ObjectValue:
		return v.obj.Equal(o.obj)
	}
	return false
}

// Interface converts v into plain Go values (nil, string, int64, float64,
// bool, []interface{}, map[string]interface{}).
func (v Value) Interface() interface{} {
	switch v.kind {
	case StringValue:
		return v.s
	case IntValue:
		return v.i
	case FloatValue:
		return v.f
	case BoolValue:
		return v.b
	case ArrayValue:
		out := make([]interface{}, len(v.arr))
		for i, it := range v.arr {
			out[i] = it.Interface()
		}
		return out
	case ObjectValue:
		return v.obj.Map()
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case NullValue:
		return []byte("null"), nil
	case StringValue:
		return json.Marshal(v.s)
	case IntValue:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case FloatValue:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return json.Marshal(strconv.FormatFloat(v.f, 'g', -1, 64))
		}
		return json.Marshal(v.f)
	case BoolValue:
		return json.Marshal(v.b)
	case ArrayValue:
		return json.Marshal(v.arr)
	case ObjectValue:
		return v.obj.MarshalJSON()
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = FromInterface(raw)
	return nil
}

// FromInterface converts decoded JSON-like Go values into a Value.
// Maps become objects with keys in sorted order.
func FromInterface(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		if f, err := t.Float64(); err == nil {
			return Float(f)
		}
		return String(t.String())
	case []string:
		items := make([]Value, len(t))
		for i, s := range t {
			items[i] = String(s)
		}
		return Array(items...)
	case []interface{}:
		items := make([]Value, len(t))
		for i, it := range t {
			items[i] = FromInterface(it)
		}
		return Array(items...)
	case map[string]string:
		obj := make(Object, 0, len(t))
		for _, k := range sortedKeys(t) {
			obj = append(obj, Field{Name: k, Value: String(t[k])})
		}
		return ObjectOf(obj)
	case map[string]interface{}:
		obj := make(Object, 0, len(t))
		for _, k := range sortedKeys(t) {
			obj = append(obj, Field{Name: k, Value: FromInterface(t[k])})
		}
		return ObjectOf(obj)
	default:
		return String(fmt.Sprint(t))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
