package probe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// LoadSizeTable reads a headerless CSV of filename,width,height rows.
//
// The filename column must match the file-name string the converter will
// emit (bare basename or relative path, depending on the chosen mode).
// Blank rows are skipped; a row with fewer than three fields or a
// non-integer width/height is an error.
func LoadSizeTable(path string) (map[string]Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open size table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	sizes := make(map[string]Dimensions)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read size table: %w", err)
		}
		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("size table row for %q has %d fields, want 3", row[0], len(row))
		}

		w, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("invalid width %q for %s: %w", row[1], row[0], err)
		}
		h, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("invalid height %q for %s: %w", row[2], row[0], err)
		}
		sizes[row[0]] = Dimensions{Width: w, Height: h}
	}
	return sizes, nil
}
