package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one named entry of an Object.
type Field struct {
	Name  string
	Value Value
}

// Object is an ordered mapping from field name to Value. Documents keep
// the field order the store returned them in.
type Object []Field

// Obj builds an object from alternating name/value pairs. Values are
// converted with FromInterface.
func Obj(pairs ...interface{}) Object {
	if len(pairs)%2 != 0 {
		panic("types.Obj: odd number of arguments")
	}
	o := make(Object, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		o = o.Set(pairs[i].(string), FromInterface(pairs[i+1]))
	}
	return o
}

// Get returns the value of the named field.
func (o Object) Get(name string) (Value, bool) {
	for _, f := range o {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Null(), false
}

// Set replaces the named field in place or appends it.
func (o Object) Set(name string, v Value) Object {
	for i := range o {
		if o[i].Name == name {
			o[i].Value = v
			return o
		}
	}
	return append(o, Field{Name: name, Value: v})
}

// Names returns the field names in order.
func (o Object) Names() []string {
	names := make([]string, len(o))
	for i, f := range o {
		names[i] = f.Name
	}
	return names
}

// Map converts the object into a plain map.
func (o Object) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(o))
	for _, f := range o {
		m[f.Name] = f.Value.Interface()
	}
	return m
}

// Equal compares field names, order and values.
func (o Object) Equal(other Object) bool {
	if len(o) != len(other) {
		return false
	}
	for i := range o {
		if o[i].Name != other[i].Name || !o[i].Value.Equal(other[i].Value) {
			return false
		}
	}
	return true
}

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping the source field order.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeOrdered(dec)
	if err != nil {
		return err
	}
	obj, ok := v.Object()
	if !ok {
		return fmt.Errorf("expected JSON object, got %s", v.Kind())
	}
	*o = obj
	return nil
}

// ParseOrderedJSON decodes any JSON text into a Value, keeping object field order.
func ParseOrderedJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeOrdered(dec)
	if err != nil {
		return Null(), err
	}
	if dec.More() {
		return Null(), fmt.Errorf("unexpected trailing data after JSON value")
	}
	return v, nil
}

func decodeOrdered(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null(), err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Object{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Null(), err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Null(), fmt.Errorf("invalid object key %v", keyTok)
				}
				val, err := decodeOrdered(dec)
				if err != nil {
					return Null(), err
				}
				obj = obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return Null(), err
			}
			return ObjectOf(obj), nil
		case '[':
			items := []Value{}
			for dec.More() {
				val, err := decodeOrdered(dec)
				if err != nil {
					return Null(), err
				}
				items = append(items, val)
			}
			if _, err := dec.Token(); err != nil {
				return Null(), err
			}
			return Array(items...), nil
		}
		return Null(), fmt.Errorf("unexpected delimiter %v", t)
	default:
		return FromInterface(t), nil
	}
}

// RecordsText serializes records as an indented JSON array.
func RecordsText(records []Object) (string, error) {
	if records == nil {
		records = []Object{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
