package bsonutil

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/peternagy/dbquerytool/internal/types"
)

// ToValue normalizes a decoded BSON value into a types.Value.
// Identity and special types (ObjectID, Decimal128, Binary, Regex, ...)
// are rendered as plain strings; datetimes as RFC 3339 in UTC.
func ToValue(v interface{}) types.Value {
	switch t := v.(type) {
	case nil:
		return types.Null()
	case primitive.Null, primitive.Undefined:
		return types.Null()
	case string:
		return types.String(t)
	case bool:
		return types.Bool(t)
	case int32:
		return types.Int(int64(t))
	case int64:
		return types.Int(t)
	case int:
		return types.Int(int64(t))
	case float64:
		return types.Float(t)
	case primitive.ObjectID:
		return types.String(t.Hex())
	case primitive.DateTime:
		return types.String(t.Time().UTC().Format(time.RFC3339Nano))
	case time.Time:
		return types.String(t.UTC().Format(time.RFC3339Nano))
	case primitive.Timestamp:
		return types.String(fmt.Sprintf("Timestamp(%d, %d)", t.T, t.I))
	case primitive.Decimal128:
		return types.String(t.String())
	case primitive.Binary:
		if t.Subtype == 0x04 && len(t.Data) == 16 {
			return types.String(formatUUID(t.Data))
		}
		return types.String(base64.StdEncoding.EncodeToString(t.Data))
	case primitive.Regex:
		return types.String("/" + t.Pattern + "/" + t.Options)
	case primitive.JavaScript:
		return types.String(string(t))
	case primitive.Symbol:
		return types.String(string(t))
	case primitive.MinKey:
		return types.String("MinKey")
	case primitive.MaxKey:
		return types.String("MaxKey")
	case primitive.D:
		return types.ObjectOf(DocToObject(t))
	case primitive.M:
		return types.FromInterface(mapToInterface(t))
	case primitive.A:
		items := make([]types.Value, len(t))
		for i, it := range t {
			items[i] = ToValue(it)
		}
		return types.Array(items...)
	case []interface{}:
		return ToValue(primitive.A(t))
	case bson.Raw:
		var doc bson.D
		if err := bson.Unmarshal(t, &doc); err != nil {
			return types.String(t.String())
		}
		return types.ObjectOf(DocToObject(doc))
	default:
		return types.String(fmt.Sprintf("%v", t))
	}
}

// DocToObject converts an ordered BSON document into an Object, keeping field order.
func DocToObject(doc bson.D) types.Object {
	obj := make(types.Object, 0, len(doc))
	for _, e := range doc {
		obj = append(obj, types.Field{Name: e.Key, Value: ToValue(e.Value)})
	}
	return obj
}

func mapToInterface(m primitive.M) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = ToValue(v)
	}
	return out
}

func formatUUID(b []byte) string {
	s := hex.EncodeToString(b)
	return s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:]
}

// FromValue converts a types.Value back into a BSON-encodable value,
// keeping object field order.
func FromValue(v types.Value) interface{} {
	switch v.Kind() {
	case types.ObjectValue:
		obj, _ := v.Object()
		return ObjectToDoc(obj)
	case types.ArrayValue:
		items, _ := v.Items()
		arr := make(bson.A, len(items))
		for i, it := range items {
			arr[i] = FromValue(it)
		}
		return arr
	default:
		return v.Interface()
	}
}

// ObjectToDoc converts an Object into an ordered BSON document.
func ObjectToDoc(obj types.Object) bson.D {
	doc := make(bson.D, 0, len(obj))
	for _, f := range obj {
		doc = append(doc, bson.E{Key: f.Name, Value: FromValue(f.Value)})
	}
	return doc
}
