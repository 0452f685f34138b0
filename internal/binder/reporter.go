package binder

import (
	"fmt"
	"strings"
)

// GenerateReport generates a formatted summary of a batch run.
func GenerateReport(report *Report) string {
	var output strings.Builder

	output.WriteString("\n")
	output.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	output.WriteString("Binding Run Report\n")
	output.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	output.WriteString(fmt.Sprintf("Rows Processed: %d\n", report.Total))
	if report.Applied > 0 {
		output.WriteString(fmt.Sprintf("Applied: %d\n", report.Applied))
	}
	if report.Simulated > 0 {
		output.WriteString(fmt.Sprintf("Simulated: %d\n", report.Simulated))
	}
	if report.Failed > 0 {
		output.WriteString(fmt.Sprintf("Failed: %d\n", report.Failed))
	}
	output.WriteString("\n")

	for _, res := range report.Results {
		if res.Status != StatusFailed {
			continue
		}
		output.WriteString(FormatFailure(&res))
		output.WriteString("\n")
	}

	output.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	output.WriteString("Summary\n")
	output.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	if report.HasFailures() {
		output.WriteString("Status: FAILED ❌\n")
		output.WriteString(fmt.Sprintf("%d of %d rows failed. Fix the rows above and re-run.\n", report.Failed, report.Total))
	} else {
		output.WriteString("Status: PASSED ✅\n")
		output.WriteString("All rows processed successfully.\n")
	}

	return output.String()
}

// FormatFailure formats a single failed row for display.
func FormatFailure(res *BindingResult) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("ERROR: row %d (%s)\n", res.Request.Row, res.ErrorKind))
	output.WriteString(fmt.Sprintf("   User: %s\n", res.Request.UserEmail))
	output.WriteString(fmt.Sprintf("   Asset: %s (%s)\n", res.Request.AssetName, res.Request.AssetType))
	output.WriteString(fmt.Sprintf("   Role: %s\n", res.Request.Role))
	output.WriteString(fmt.Sprintf("\n   %s\n", res.Detail))

	return output.String()
}
