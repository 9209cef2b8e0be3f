package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/peternagy/dbquerytool/internal/types"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v\n%s", err, data)
	}
	return rows
}

func TestWriteCSV_HeaderInFirstSeenOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleRecords(), FormatCSV, Options{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	rows := readCSV(t, buf.Bytes())

	want := [][]string{
		{"_id", "name", "age", "address", "tags", "active", "score"},
		{"507f1f77bcf86cd799439011", "Alice", "30", `{"city":"NYC"}`, `["go","mongodb"]`, "", ""},
		{"507f1f77bcf86cd799439012", "Bob, Jr.", "", "", "", "true", "9.5"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("row %d col %d = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestWriteCSV_Flatten(t *testing.T) {
	records := []types.Object{
		types.Obj("user", map[string]interface{}{"name": "Alice", "address": map[string]interface{}{"city": "NYC"}},
			"tags", []interface{}{"a", "b"}),
	}
	var buf bytes.Buffer
	if err := Write(&buf, records, FormatCSV, Options{FlattenObjects: true, FlattenArrays: true}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	rows := readCSV(t, buf.Bytes())

	header := rows[0]
	if len(header) != 3 || header[0] != "user.address.city" || header[1] != "user.name" || header[2] != "tags" {
		t.Errorf("header = %v", header)
	}
	if rows[1][2] != "a;b" {
		t.Errorf("flattened array = %q, want a;b", rows[1][2])
	}
}
