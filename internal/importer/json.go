package importer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/peternagy/dbquerytool/internal/bsonutil"
	"github.com/peternagy/dbquerytool/internal/types"
)

// readJSON collects the records of a JSON array, a single object or NDJSON.
func readJSON(r io.Reader, format FileFormat) ([]types.Object, error) {
	var records []types.Object
	collect := func(data []byte) error {
		rec, err := decodeRecord(data)
		if err != nil {
			return fmt.Errorf("record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
		return nil
	}

	var err error
	if format == FormatNDJSON {
		err = processNDJSON(r, collect)
	} else {
		err = processJSONArray(r, collect)
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

// decodeRecord parses one Extended JSON object, keeping field order.
func decodeRecord(data []byte) (types.Object, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON document: %w", err)
	}
	return bsonutil.DocToObject(doc), nil
}

// processNDJSON reads NDJSON (one JSON object per line) and calls processDoc for each.
func processNDJSON(r io.Reader, processDoc func([]byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 16*1024*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := processDoc([]byte(line)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// processJSONArray streams the elements of a JSON array. A top-level
// object is handed over as a single document.
func processJSONArray(r io.Reader, processDoc func([]byte) error) error {
	decoder := json.NewDecoder(r)

	var raw json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case strings.HasPrefix(trimmed, "{"):
		return processDoc(raw)
	case !strings.HasPrefix(trimmed, "["):
		return fmt.Errorf("expected JSON array or object")
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return fmt.Errorf("failed to decode JSON array: %w", err)
	}
	for i, el := range elements {
		if !strings.HasPrefix(strings.TrimSpace(string(el)), "{") {
			return fmt.Errorf("element %d is not a JSON object", i)
		}
		if err := processDoc(el); err != nil {
			return err
		}
	}
	return nil
}
