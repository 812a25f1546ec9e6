// Package ingest converts OCR chest log files, correction rule files and
// validation list files into typed rows. It knows nothing about the store;
// parsed rows cross the boundary as plain model values.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/wtharvey/chestkeeper/internal/common"
	"github.com/wtharvey/chestkeeper/internal/model"
)

// ReadEntriesFile parses a CSV chest log export into entries.
func ReadEntriesFile(path string) ([]model.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open entries file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// ReadEntries parses CSV rows into entries. The first row is the header;
// the columns id, player, chest_type and source map onto the semantic
// fields, and any other column becomes an extra field. Entries without an id
// are assigned a fresh UUID.
func ReadEntries(r io.Reader) ([]model.Entry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, common.ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = normalizeColumn(header[i])
	}

	var entries []model.Entry
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", line, common.ErrMalformedRow, err)
		}

		var e model.Entry
		for i, value := range record {
			value = strings.TrimSpace(value)
			if header[i] == "id" {
				e.ID = value
				continue
			}
			e.SetField(header[i], value)
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		e.Status = model.StatusPending
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, common.ErrEmptyFile
	}
	return entries, nil
}

// normalizeColumn maps header spellings like "Chest Type" onto field names.
func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}
