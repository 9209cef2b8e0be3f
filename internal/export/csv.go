package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peternagy/dbquerytool/internal/types"
)

// writeCSV writes one row per record. The header lists field names in the
// order they are first seen across all records.
func writeCSV(w io.Writer, records []types.Object, opts Options) error {
	rows := make([]types.Object, len(records))
	for i, rec := range records {
		if opts.FlattenObjects {
			rows[i] = flattenDocument(rec, "")
		} else {
			rows[i] = rec
		}
	}

	var header []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, f := range row {
			if !seen[f.Name] {
				seen[f.Name] = true
				header = append(header, f.Name)
			}
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	line := make([]string, len(header))
	for _, row := range rows {
		for i, name := range header {
			v, _ := row.Get(name)
			line[i] = formatCSVValue(v, opts.FlattenArrays)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// flattenDocument converts a nested document to a flat one with dot notation keys.
func flattenDocument(doc types.Object, prefix string) types.Object {
	out := types.Object{}
	for _, f := range doc {
		fullKey := f.Name
		if prefix != "" {
			fullKey = prefix + "." + f.Name
		}
		if nested, ok := f.Value.Object(); ok {
			out = append(out, flattenDocument(nested, fullKey)...)
			continue
		}
		out = append(out, types.Field{Name: fullKey, Value: f.Value})
	}
	return out
}

// formatCSVValue converts a value to a CSV-safe string representation.
func formatCSVValue(v types.Value, flattenArrays bool) string {
	switch v.Kind() {
	case types.NullValue:
		return ""
	case types.StringValue:
		s, _ := v.Str()
		return s
	case types.BoolValue:
		b, _ := v.Boolean()
		return strconv.FormatBool(b)
	case types.IntValue:
		n, _ := v.Int64()
		return strconv.FormatInt(n, 10)
	case types.FloatValue:
		f, _ := v.Float64()
		return strconv.FormatFloat(f, 'f', -1, 64)
	case types.ArrayValue:
		return formatArray(v, flattenArrays)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v.Interface())
		}
		return string(data)
	}
}

// formatArray formats an array value for CSV.
func formatArray(v types.Value, flatten bool) string {
	if !flatten {
		data, _ := json.Marshal(v)
		return string(data)
	}
	items, _ := v.Items()
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = formatCSVValue(it, flatten)
	}
	return strings.Join(parts, ";")
}
