package bsonutil

import (
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/peternagy/dbquerytool/internal/types"
)

func TestToValue_Scalars(t *testing.T) {
	oid, _ := primitive.ObjectIDFromHex("507f1f77bcf86cd799439011")
	dec, _ := primitive.ParseDecimal128("12.50")
	when := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   interface{}
		want types.Value
	}{
		{"nil", nil, types.Null()},
		{"null", primitive.Null{}, types.Null()},
		{"string", "hello", types.String("hello")},
		{"int32", int32(42), types.Int(42)},
		{"int64", int64(1) << 40, types.Int(1 << 40)},
		{"float64", 3.5, types.Float(3.5)},
		{"bool", true, types.Bool(true)},
		{"objectid", oid, types.String("507f1f77bcf86cd799439011")},
		{"datetime", primitive.NewDateTimeFromTime(when), types.String("2024-05-01T10:00:00Z")},
		{"decimal", dec, types.String("12.50")},
		{"regex", primitive.Regex{Pattern: "^a", Options: "i"}, types.String("/^a/i")},
		{"binary", primitive.Binary{Subtype: 0, Data: []byte("hi")}, types.String("aGk=")},
		{"uuid", primitive.Binary{Subtype: 4, Data: []byte{
			0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0,
			0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0,
		}}, types.String("12345678-9abc-def0-1234-56789abcdef0")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToValue(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("ToValue(%v) = %v (%s), want %v (%s)", tt.in, got.Interface(), got.Kind(), tt.want.Interface(), tt.want.Kind())
			}
		})
	}
}

func TestDocToObject_KeepsOrderAndNests(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := bson.D{
		{Key: "_id", Value: oid},
		{Key: "name", Value: "Alice"},
		{Key: "address", Value: bson.D{{Key: "zip", Value: "12345"}, {Key: "city", Value: "Springfield"}}},
		{Key: "tags", Value: bson.A{"a", int32(2)}},
	}

	obj := DocToObject(doc)
	if names := obj.Names(); len(names) != 4 || names[0] != "_id" || names[3] != "tags" {
		t.Fatalf("Names = %v", names)
	}

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"_id":"` + oid.Hex() + `","name":"Alice","address":{"zip":"12345","city":"Springfield"},"tags":["a",2]}`
	if string(data) != want {
		t.Errorf("JSON = %s, want %s", data, want)
	}
}

func TestToValue_RawDocument(t *testing.T) {
	raw, err := bson.Marshal(bson.D{{Key: "count", Value: int32(0)}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	v := ToValue(bson.Raw(raw))
	obj, ok := v.Object()
	if !ok {
		t.Fatalf("Expected object, got %s", v.Kind())
	}
	if n, _ := obj.Get("count"); !n.Equal(types.Int(0)) {
		t.Errorf("count = %v, want 0", n.Interface())
	}
}

func TestObjectToDoc_RoundTrip(t *testing.T) {
	obj := types.Obj("b", 1, "a", []interface{}{"x", true}, "n", nil)
	obj = obj.Set("nested", types.ObjectOf(types.Obj("k", "v")))

	doc := ObjectToDoc(obj)
	if doc[0].Key != "b" || doc[1].Key != "a" {
		t.Errorf("Order not kept: %v", doc)
	}
	if _, ok := doc[3].Value.(bson.D); !ok {
		t.Errorf("Nested object should become bson.D, got %T", doc[3].Value)
	}
	if !DocToObject(doc).Equal(obj) {
		t.Error("ObjectToDoc/DocToObject round trip changed the object")
	}
}
