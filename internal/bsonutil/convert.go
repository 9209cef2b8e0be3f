package bsonutil

import "go.mongodb.org/mongo-driver/bson"

// Reply is a decoded server command reply such as collStats. Servers report
// the same counter as int32, int64 or double depending on version and
// magnitude, so numeric reads accept any of them.
type Reply bson.M

// Int64 returns the number under key, or 0 when missing or not numeric.
func (r Reply) Int64(key string) int64 { return Int64(r[key]) }

// Bool returns the boolean under key, or false.
func (r Reply) Bool(key string) bool { return Bool(r[key]) }

// Int64 reads a decoded BSON number. Doubles are truncated toward zero;
// anything else yields 0.
func Int64(v interface{}) int64 {
	val := ToValue(v)
	if n, ok := val.Int64(); ok {
		return n
	}
	f, _ := val.Float64()
	return int64(f)
}

// Bool reads a decoded BSON boolean.
func Bool(v interface{}) bool {
	b, _ := ToValue(v).Boolean()
	return b
}

// String reads a decoded BSON string. ObjectIDs and other identity types
// come back in their display form; numbers and documents yield "".
func String(v interface{}) string {
	s, _ := ToValue(v).Str()
	return s
}
