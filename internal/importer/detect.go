package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// FileFormat is the detected layout of an import file.
type FileFormat string

const (
	FormatJSONArray FileFormat = "jsonarray"
	FormatNDJSON    FileFormat = "ndjson"
	FormatCSV       FileFormat = "csv"
	FormatUnknown   FileFormat = "unknown"
)

// DetectFileFormat reads the start of a file to determine its format.
// A single JSON object is reported as FormatJSONArray.
func DetectFileFormat(filePath string) (FileFormat, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 8192)
	n, err := f.Read(buf)
	if n == 0 {
		return FormatUnknown, nil
	}
	if err != nil && err != io.EOF {
		return "", err
	}

	content := strings.TrimPrefix(string(buf[:n]), "\xEF\xBB\xBF")
	trimmed := strings.TrimLeftFunc(content, unicode.IsSpace)
	if len(trimmed) == 0 {
		return FormatUnknown, nil
	}

	switch trimmed[0] {
	case '[':
		return FormatJSONArray, nil
	case '{':
		return detectJSONVariant(filePath)
	}
	if isLikelyCSV(trimmed) {
		return FormatCSV, nil
	}
	return FormatUnknown, nil
}

// detectJSONVariant distinguishes NDJSON (two or more lines starting with {)
// from a single JSON object.
func detectJSONVariant(filePath string) (FileFormat, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	lines, objectLines := 0, 0
	for lines < 20 && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines++
		if line[0] == '{' {
			objectLines++
		}
	}
	if objectLines >= 2 {
		return FormatNDJSON, nil
	}
	return FormatJSONArray, nil
}

// isLikelyCSV checks the first lines for a consistent delimiter count.
func isLikelyCSV(content string) bool {
	lines := strings.SplitN(content, "\n", 6)
	if len(lines) < 2 {
		return false
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && (trimmed[0] == '{' || trimmed[0] == '[') {
			return false
		}
	}

	second := strings.TrimSpace(lines[1])
	if second == "" {
		return false
	}
	for _, delim := range []string{",", "\t", ";", "|"} {
		c1 := strings.Count(lines[0], delim)
		c2 := strings.Count(second, delim)
		if c1 >= 1 && c2 >= 1 && abs(c1-c2) <= 1 {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
