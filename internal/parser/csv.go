// Package parser reads binding requests from CSV input.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// BindingRequest is one row of work parsed from the CSV input.
type BindingRequest struct {
	Row       int // CSV line number; the header is row 1
	UserEmail string
	ProjectID string
	AssetName string
	AssetType string
	Role      string
}

var requiredColumns = []string{"user_email", "project_id", "asset_name", "asset_type", "role"}

// ParseCSV reads and validates the CSV file at path. The header must contain
// all required columns (in any order, extra columns are ignored) and every
// data row must have a non-empty value in each required column. Validation
// failures abort the whole parse; no partial request list is returned.
func ParseCSV(path string) ([]BindingRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("CSV is missing required columns: %s", strings.Join(missing, ", "))
	}

	var requests []BindingRequest
	row := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		fields := make(map[string]string, len(requiredColumns))
		for _, col := range requiredColumns {
			i := index[col]
			if i >= len(record) || strings.TrimSpace(record[i]) == "" {
				return nil, fmt.Errorf("row %d: column %q is empty", row, col)
			}
			fields[col] = strings.TrimSpace(record[i])
		}

		requests = append(requests, BindingRequest{
			Row:       row,
			UserEmail: fields["user_email"],
			ProjectID: fields["project_id"],
			AssetName: fields["asset_name"],
			AssetType: fields["asset_type"],
			Role:      fields["role"],
		})
	}

	return requests, nil
}
