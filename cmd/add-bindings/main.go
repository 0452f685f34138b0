package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hmkz/google-cloud-add-bindings/internal/binder"
	"github.com/hmkz/google-cloud-add-bindings/internal/definitions"
	"github.com/hmkz/google-cloud-add-bindings/internal/parser"
	"github.com/hmkz/google-cloud-add-bindings/internal/policy"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Color definitions for output
var (
	headerColor    = color.New(color.Bold, color.FgCyan)
	statusApplied  = color.New(color.FgGreen)
	statusSimulate = color.New(color.FgYellow)
	statusFailed   = color.New(color.FgRed)
)

// colorizeStatus returns a colored string based on the row status
func colorizeStatus(status binder.Status) string {
	switch status {
	case binder.StatusApplied:
		return statusApplied.Sprint(status)
	case binder.StatusSimulated:
		return statusSimulate.Sprint(status)
	case binder.StatusFailed:
		return statusFailed.Sprint(status)
	default:
		return string(status)
	}
}

func main() {
	var (
		csvFile        string
		credentials    string
		dryRun         bool
		configFile     string
		exportConfig   string
		listAssetTypes bool
	)

	var rootCmd = &cobra.Command{
		Use:   "add-bindings",
		Short: "Add IAM role bindings on Google Cloud resources in bulk",
		Long:  `Reads (user, project, asset, role) rows from a CSV file and grants each binding on the target resource's IAM policy.`,
		Run: func(cmd *cobra.Command, args []string) {
			registry := definitions.NewRegistry()

			if configFile != "" {
				if err := registry.LoadConfig(configFile); err != nil {
					fmt.Printf("Error loading config file: %v\n", err)
					os.Exit(1)
				}
			}

			if listAssetTypes {
				if outputFormat == "json" {
					printJSON(ConvertToAssetTypesOutput(registry.List()))
					return
				}
				_, _ = headerColor.Println("Supported asset types:")
				for _, assetType := range registry.List() {
					fmt.Printf("  - %s\n", assetType)
				}
				return
			}

			if exportConfig != "" {
				if err := registry.ExportConfig(exportConfig); err != nil {
					fmt.Printf("Error exporting config: %v\n", err)
					os.Exit(1)
				}
				fmt.Printf("Exported asset type config to '%s'\n", exportConfig)
				return
			}

			if csvFile == "" {
				fmt.Println("Error: --csv-file is required")
				os.Exit(1)
			}

			requests, err := parser.ParseCSV(csvFile)
			if err != nil {
				fmt.Printf("Error reading CSV file: %v\n", err)
				os.Exit(1)
			}

			ctx := context.Background()
			store, err := policy.NewGCPStore(ctx, credentials)
			if err != nil {
				fmt.Printf("Error setting up Google Cloud clients: %v\n", err)
				os.Exit(1)
			}

			if outputFormat == "text" {
				mode := "apply"
				if dryRun {
					mode = "dry-run"
				}
				fmt.Printf("Processing %d rows from %s (%s mode)\n", len(requests), csvFile, mode)
			}

			applier := &binder.Applier{Registry: registry, Store: store, DryRun: dryRun}
			report := binder.ProcessBatch(ctx, applier, requests)

			if outputFormat == "json" {
				printJSON(ConvertToRunOutput(report, dryRun))
				if report.HasFailures() {
					os.Exit(1)
				}
				return
			}

			// Text Output
			_, _ = headerColor.Println("\n--- Row Results ---")
			for _, res := range report.Results {
				fmt.Printf("row %d: %s", res.Request.Row, colorizeStatus(res.Status))
				if res.Status == binder.StatusFailed {
					fmt.Printf(" [%s]\n", res.ErrorKind)
					continue
				}
				fmt.Printf(" %s -> %s on %s\n", res.Member, res.Request.Role, res.Request.AssetName)
			}

			fmt.Println(binder.GenerateReport(report))

			if report.HasFailures() {
				os.Exit(1)
			}
		},
	}

	rootCmd.Flags().StringVar(&csvFile, "csv-file", "", "Path to the CSV file listing bindings to add")
	rootCmd.Flags().StringVar(&credentials, "credentials", "", "Path to a service account key file (default: application default credentials)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute changes without submitting them")
	rootCmd.Flags().StringVar(&configFile, "config-file", "", "Path to an asset type config file (.json, .yaml, .yml)")
	rootCmd.Flags().StringVar(&exportConfig, "export-config", "", "Export the current asset type config to this file and exit")
	rootCmd.Flags().BoolVar(&listAssetTypes, "list-asset-types", false, "List supported asset types and exit")
	rootCmd.Flags().StringVar(&outputFormat, "output", "text", "Output format: text or json")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
