package importer

import (
	"io"
	"strings"
	"testing"

	"github.com/peternagy/dbquerytool/internal/types"
)

func TestInferType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Value
	}{
		{name: "empty string", input: "", want: types.Null()},
		{name: "true lowercase", input: "true", want: types.Bool(true)},
		{name: "TRUE uppercase", input: "TRUE", want: types.Bool(true)},
		{name: "False mixed case", input: "False", want: types.Bool(false)},
		{name: "positive int", input: "42", want: types.Int(42)},
		{name: "negative int", input: "-7", want: types.Int(-7)},
		{name: "float", input: "3.14", want: types.Float(3.14)},
		{name: "date stays text", input: "2023-01-15", want: types.String("2023-01-15")},
		{name: "mixed alphanumeric", input: "123abc", want: types.String("123abc")},
		{name: "whitespace is not empty", input: " ", want: types.String(" ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inferType(tt.input)
			if !got.Equal(tt.want) || got.Kind() != tt.want.Kind() {
				t.Errorf("inferType(%q) = %v (%s), want %v (%s)", tt.input, got.Interface(), got.Kind(), tt.want.Interface(), tt.want.Kind())
			}
		})
	}
}

func TestUnflattenDocument(t *testing.T) {
	flat := types.Object{
		{Name: "name", Value: types.String("John")},
		{Name: "address.city", Value: types.String("NY")},
		{Name: "age", Value: types.Int(30)},
		{Name: "address.zip", Value: types.String("10001")},
		{Name: "a.b.c", Value: types.String("deep")},
	}
	want := types.Object{
		{Name: "name", Value: types.String("John")},
		{Name: "address", Value: types.ObjectOf(types.Object{
			{Name: "city", Value: types.String("NY")},
			{Name: "zip", Value: types.String("10001")},
		})},
		{Name: "age", Value: types.Int(30)},
		{Name: "a", Value: types.ObjectOf(types.Object{
			{Name: "b", Value: types.ObjectOf(types.Object{{Name: "c", Value: types.String("deep")}})},
		})},
	}

	if got := unflattenDocument(flat); !got.Equal(want) {
		t.Errorf("unflattenDocument() = %v, want %v", got, want)
	}
	if got := unflattenDocument(types.Object{}); len(got) != 0 {
		t.Errorf("empty input gave %v", got)
	}
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantDelim rune
	}{
		{"comma delimited", "name,age,city\nAlice,30,NYC\nBob,25,LA\n", ','},
		{"tab delimited", "name\tage\tcity\nAlice\t30\tNYC\nBob\t25\tLA\n", '\t'},
		{"semicolon delimited", "name;age;city\nAlice;30;NYC\nBob;25;LA\n", ';'},
		{"single column defaults to comma", "name\nAlice\nBob\n", ','},
		{"quoted commas", "name,age,city\n\"Smith, John\",30,\"New York, NY\"\n\"Doe, Jane\",25,\"Los Angeles, CA\"\n", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectDelimiter(tt.content); got != tt.wantDelim {
				t.Errorf("detectDelimiter() = %q, want %q", got, tt.wantDelim)
			}
		})
	}
}

func TestSkipBOM(t *testing.T) {
	for name, input := range map[string]string{
		"with bom":    "\xEF\xBB\xBFname,age\nAlice,30\n",
		"without bom": "name,age\nAlice,30\n",
		"short":       "ab",
	} {
		t.Run(name, func(t *testing.T) {
			data, err := io.ReadAll(skipBOM(strings.NewReader(input)))
			if err != nil {
				t.Fatalf("failed to read: %v", err)
			}
			want := strings.TrimPrefix(input, "\xEF\xBB\xBF")
			if string(data) != want {
				t.Errorf("got %q, want %q", data, want)
			}
		})
	}
}

func TestReadCSV(t *testing.T) {
	content := "\xEF\xBB\xBFname;age;active;address.city\nAlice;30;true;NYC\n\nBob;;false\n"
	records, err := readCSV(strings.NewReader(content))
	if err != nil {
		t.Fatalf("readCSV failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	want := types.Obj("name", "Alice", "age", 30, "active", true, "address", map[string]interface{}{"city": "NYC"})
	if !records[0].Equal(want) {
		t.Errorf("first record = %v, want %v", records[0], want)
	}
	if age, _ := records[1].Get("age"); !age.IsNull() {
		t.Errorf("empty cell should be null, got %v", age.Interface())
	}
	if city, _ := records[1].Get("address"); !city.Equal(types.ObjectOf(types.Obj("city", nil))) {
		t.Errorf("short row should pad with null, got %v", city.Interface())
	}
}
