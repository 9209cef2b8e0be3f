// Package importer reads records from JSON and CSV files for bulk insertion.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peternagy/dbquerytool/internal/debug"
	"github.com/peternagy/dbquerytool/internal/types"
)

// ReadFile loads the records of a .json (array, object or NDJSON) or .csv file.
// Files with another extension are sniffed by content.
func ReadFile(path string) ([]types.Object, error) {
	format, err := formatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var records []types.Object
	switch format {
	case FormatCSV:
		records, err = readCSV(f)
	case FormatJSONArray, FormatNDJSON:
		records, err = readJSON(f, format)
	default:
		return nil, fmt.Errorf("unsupported import file %s", filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", filepath.Base(path), err)
	}
	if records == nil {
		records = []types.Object{}
	}

	debug.LogImport("records read", map[string]interface{}{
		"path":    path,
		"format":  string(format),
		"records": len(records),
	})
	return records, nil
}

func formatFor(path string) (FileFormat, error) {
	detected, err := DetectFileFormat(path)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json", ".ndjson", ".jsonl":
		if detected == FormatNDJSON {
			return FormatNDJSON, nil
		}
		return FormatJSONArray, nil
	}
	return detected, nil
}
