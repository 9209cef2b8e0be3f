package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/peternagy/dbquerytool/internal/types"
)

// writeJSON streams records as an indented JSON array, one record at a time.
func writeJSON(w io.Writer, records []types.Object) error {
	bw := bufio.NewWriter(w)
	if len(records) == 0 {
		bw.WriteString("[]\n")
		return bw.Flush()
	}

	bw.WriteString("[\n")
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "  ", "  "); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
		bw.WriteString("  ")
		bw.Write(buf.Bytes())
		if i < len(records)-1 {
			bw.WriteByte(',')
		}
		bw.WriteByte('\n')
	}
	bw.WriteString("]\n")
	return bw.Flush()
}
