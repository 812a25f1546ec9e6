package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wtharvey/chestkeeper/internal/common"
	"github.com/wtharvey/chestkeeper/internal/model"
)

// ReadRulesFile parses a CSV correction rule file.
func ReadRulesFile(path string) ([]model.CorrectionRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rules, err := ReadRules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// ReadRules parses CSV rows into correction rules. Recognized columns:
// from, to, category, enabled, priority. Enabled defaults to true when the
// column is absent or empty.
func ReadRules(r io.Reader) ([]model.CorrectionRule, error) {
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

	now := time.Now()
	var rules []model.CorrectionRule
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", line, common.ErrMalformedRow, err)
		}

		rule := model.CorrectionRule{Enabled: true, LastModified: now}
		for i, value := range record {
			value = strings.TrimSpace(value)
			switch header[i] {
			case "from", "from_text":
				rule.FromText = value
			case "to", "to_text":
				rule.ToText = value
			case "category", "field_category":
				rule.FieldCategory = value
			case "enabled":
				if value != "" {
					enabled, perr := strconv.ParseBool(value)
					if perr != nil {
						return nil, fmt.Errorf("line %d: %w: enabled %q", line, common.ErrMalformedRow, value)
					}
					rule.Enabled = enabled
				}
			case "priority":
				if value != "" {
					priority, perr := strconv.Atoi(value)
					if perr != nil {
						return nil, fmt.Errorf("line %d: %w: priority %q", line, common.ErrMalformedRow, value)
					}
					rule.Priority = priority
				}
			}
		}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rules = append(rules, rule)
	}

	if len(rules) == 0 {
		return nil, common.ErrEmptyFile
	}
	return rules, nil
}
