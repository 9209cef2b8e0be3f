package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peternagy/dbquerytool/internal/types"
)

// readCSV turns each row into a record keyed by the header. Dot-notation
// columns become nested objects.
func readCSV(r io.Reader) ([]types.Object, error) {
	br := bufio.NewReader(skipBOM(r))
	peek, _ := br.Peek(8192)
	delim := detectDelimiter(string(peek))

	reader := csv.NewReader(br)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []types.Object
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		flat := make(types.Object, 0, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			v := types.Null()
			if i < len(row) {
				v = inferType(row[i])
			}
			flat = append(flat, types.Field{Name: name, Value: v})
		}
		records = append(records, unflattenDocument(flat))
	}
	return records, nil
}

// detectDelimiter parses the sample lines with each candidate delimiter and
// picks the one that gives the most consistent field count.
func detectDelimiter(sample string) rune {
	var lines []string
	for _, line := range strings.Split(sample, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
		if len(lines) == 10 {
			break
		}
	}

	bestDelim := ','
	bestScore := -1
	for _, c := range []rune{',', '\t', ';'} {
		var counts []int
		for _, line := range lines {
			r := csv.NewReader(strings.NewReader(line))
			r.Comma = c
			r.LazyQuotes = true
			fields, err := r.Read()
			if err != nil {
				continue
			}
			counts = append(counts, len(fields))
		}
		if len(counts) == 0 || counts[0] <= 1 {
			continue
		}

		score := counts[0]
		for _, n := range counts[1:] {
			if n != counts[0] {
				score /= 2
				break
			}
		}
		if score > bestScore {
			bestScore = score
			bestDelim = c
		}
	}
	return bestDelim
}

// inferType converts a cell to its most likely value: empty is null,
// then bool, integer, float, and finally the string itself.
func inferType(value string) types.Value {
	if value == "" {
		return types.Null()
	}
	switch strings.ToLower(value) {
	case "true":
		return types.Bool(true)
	case "false":
		return types.Bool(false)
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return types.Int(i)
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return types.Float(f)
	}
	return types.String(value)
}

// unflattenDocument converts dot-notation keys into nested objects, keeping
// the order in which fields first appear. {"address.city": "NY"} becomes
// {"address": {"city": "NY"}}.
func unflattenDocument(flat types.Object) types.Object {
	result := types.Object{}
	for _, f := range flat {
		result = setPath(result, strings.Split(f.Name, "."), f.Value)
	}
	return result
}

func setPath(obj types.Object, path []string, v types.Value) types.Object {
	if len(path) == 1 {
		return obj.Set(path[0], v)
	}
	existing, _ := obj.Get(path[0])
	// A scalar already at this path is replaced by the nested object.
	nested, _ := existing.Object()
	return obj.Set(path[0], types.ObjectOf(setPath(nested, path[1:], v)))
}

// skipBOM returns a reader that skips a UTF-8 BOM if present.
func skipBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, err := io.ReadFull(r, buf)
	if err == nil && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}
