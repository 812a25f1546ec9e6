package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wtharvey/chestkeeper/internal/common"
)

// ReadListFile parses a validation list file: one accepted value per line.
// Blank lines and lines starting with # are skipped.
func ReadListFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open list file: %w", err)
	}
	defer func() { _ = f.Close() }()

	values, err := ReadList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// ReadList reads one value per line from r.
func ReadList(r io.Reader) ([]string, error) {
	var values []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		values = append(values, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list: %w", err)
	}
	if len(values) == 0 {
		return nil, common.ErrEmptyFile
	}
	return values, nil
}
