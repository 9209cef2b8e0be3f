// Package export writes query results as JSON, CSV or YAML.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peternagy/dbquerytool/internal/debug"
	"github.com/peternagy/dbquerytool/internal/types"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported export format %q (expected json, csv or yaml)", s)
}

// FormatForPath derives the format from a file extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Options tunes CSV output.
type Options struct {
	// FlattenObjects expands nested objects into dot-notation columns.
	FlattenObjects bool
	// FlattenArrays joins array items with ";" instead of writing JSON.
	FlattenArrays bool
}

// Write encodes records to w in the given format.
func Write(w io.Writer, records []types.Object, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, records)
	case FormatCSV:
		return writeCSV(w, records, opts)
	case FormatYAML:
		return writeYAML(w, records)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// WriteFile exports records to path. An empty format is derived from the
// file extension.
func WriteFile(path string, records []types.Object, format Format, opts Options) error {
	if format == "" {
		f, err := FormatForPath(path)
		if err != nil {
			return err
		}
		format = f
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(file, records, format, opts); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	debug.LogExport("records exported", map[string]interface{}{
		"path":    path,
		"format":  string(format),
		"records": len(records),
	})
	return nil
}
