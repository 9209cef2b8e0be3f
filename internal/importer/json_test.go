package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peternagy/dbquerytool/internal/types"
)

func TestProcessNDJSON(t *testing.T) {
	content := "{\"_id\": \"1\"}\n\n{\"_id\": \"2\"}\n{\"_id\": \"3\"}\n\n"
	var docs []string
	err := processNDJSON(strings.NewReader(content), func(data []byte) error {
		docs = append(docs, string(data))
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestProcessJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"three elements", `[{"_id": "1"}, {"_id": "2"}, {"_id": "3"}]`, 3},
		{"single element", `[{"_id": "1", "name": "Alice"}]`, 1},
		{"empty", `[]`, 0},
		{"single object", `{"_id": "1", "name": "Alice"}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count := 0
			err := processJSONArray(strings.NewReader(tt.content), func([]byte) error {
				count++
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestProcessJSONArray_Rejects(t *testing.T) {
	for _, content := range []string{`"text"`, `[1, 2]`, `[{"a": 1}`, ``} {
		err := processJSONArray(strings.NewReader(content), func([]byte) error { return nil })
		assert.Error(t, err, "content %q", content)
	}
}

func TestDecodeRecord_ExtendedJSON(t *testing.T) {
	rec, err := decodeRecord([]byte(`{"_id": {"$oid": "507f1f77bcf86cd799439011"}, "n": 3, "when": {"$date": "2024-01-02T03:04:05Z"}, "tags": ["a"]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"_id", "n", "when", "tags"}, rec.Names())
	id, _ := rec.Get("_id")
	assert.True(t, id.Equal(types.String("507f1f77bcf86cd799439011")))
	n, _ := rec.Get("n")
	assert.Equal(t, types.IntValue, n.Kind())
	when, _ := rec.Get("when")
	assert.True(t, when.Equal(types.String("2024-01-02T03:04:05Z")))
}

func TestReadFile(t *testing.T) {
	t.Run("json array", func(t *testing.T) {
		path := writeTestFile(t, "in.json", `[{"name": "Alice", "age": 30}, {"name": "Bob"}]`)
		records, err := ReadFile(path)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.True(t, records[0].Equal(types.Obj("name", "Alice", "age", 30)))
	})

	t.Run("single object", func(t *testing.T) {
		records, err := ReadFile(writeTestFile(t, "one.json", `{"name": "Alice"}`))
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("ndjson", func(t *testing.T) {
		records, err := ReadFile(writeTestFile(t, "in.jsonl", "{\"a\": 1}\n{\"a\": 2}\n"))
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("csv", func(t *testing.T) {
		records, err := ReadFile(writeTestFile(t, "in.csv", "name,age\nAlice,30\n"))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].Equal(types.Obj("name", "Alice", "age", 30)))
	})

	t.Run("header only csv", func(t *testing.T) {
		records, err := ReadFile(writeTestFile(t, "empty.csv", "name,age\n"))
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.NotNil(t, records)
	})

	t.Run("invalid record", func(t *testing.T) {
		_, err := ReadFile(writeTestFile(t, "bad.json", `[{"a": {"$oid": "zz"}}]`))
		assert.Error(t, err)
	})

	t.Run("unknown content", func(t *testing.T) {
		_, err := ReadFile(writeTestFile(t, "notes.txt", "free text"))
		assert.Error(t, err)
	})
}
