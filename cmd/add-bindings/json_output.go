package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hmkz/google-cloud-add-bindings/internal/binder"
)

// outputFormat is the global flag for output format (text or json)
var outputFormat string

// RunOutput represents the JSON output for a batch run
type RunOutput struct {
	Command   string      `json:"command"`
	Timestamp time.Time   `json:"timestamp"`
	Mode      string      `json:"mode"` // "apply" or "dry-run"
	Total     int         `json:"total"`
	Applied   int         `json:"applied"`
	Simulated int         `json:"simulated"`
	Failed    int         `json:"failed"`
	Rows      []RowOutput `json:"rows"`
}

type RowOutput struct {
	Row       int    `json:"row"`
	UserEmail string `json:"user_email"`
	ProjectID string `json:"project_id"`
	AssetName string `json:"asset_name"`
	AssetType string `json:"asset_type"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	ErrorKind string `json:"error_kind,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// AssetTypesOutput represents the JSON output for --list-asset-types
type AssetTypesOutput struct {
	Command    string    `json:"command"`
	Timestamp  time.Time `json:"timestamp"`
	AssetTypes []string  `json:"asset_types"`
}

// ConvertToRunOutput converts a batch report to its JSON output form
func ConvertToRunOutput(report *binder.Report, dryRun bool) RunOutput {
	mode := "apply"
	if dryRun {
		mode = "dry-run"
	}

	out := RunOutput{
		Command:   "add-bindings",
		Timestamp: time.Now(),
		Mode:      mode,
		Total:     report.Total,
		Applied:   report.Applied,
		Simulated: report.Simulated,
		Failed:    report.Failed,
		Rows:      make([]RowOutput, 0, len(report.Results)),
	}

	for _, res := range report.Results {
		out.Rows = append(out.Rows, RowOutput{
			Row:       res.Request.Row,
			UserEmail: res.Request.UserEmail,
			ProjectID: res.Request.ProjectID,
			AssetName: res.Request.AssetName,
			AssetType: res.Request.AssetType,
			Role:      res.Request.Role,
			Status:    string(res.Status),
			ErrorKind: string(res.ErrorKind),
			Detail:    res.Detail,
		})
	}

	return out
}

// ConvertToAssetTypesOutput converts the asset type listing to JSON output
func ConvertToAssetTypesOutput(assetTypes []string) AssetTypesOutput {
	return AssetTypesOutput{
		Command:    "list-asset-types",
		Timestamp:  time.Now(),
		AssetTypes: assetTypes,
	}
}

// printJSON encodes and prints the given interface as JSON to stdout
func printJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating JSON output: %v\n", err)
		os.Exit(1)
	}
}
