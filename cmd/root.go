// Package cmd implements the command-line interface for quellogd.
// It uses the Cobra library to handle commands, flags, and execution.
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// Version information (passed from main)
var (
	version string
	commit  string
	date    string
)

// Flag variables for command-line options.
var (
	moduleFilter []string // --module: restrict to these modules
	catalogDir   string   // --catalog: extra format catalog directory
	noBuiltin    bool     // --no-builtin: skip the embedded catalog

	beginTime string // --begin: lower time bound
	endTime   string // --end: upper time bound

	reverseFlag bool // --reverse: iterate newest-first

	filterModule []string // --filter-module: post-merge module allowlist
	filterField  []string // --filter-field: "name=value" repeatable

	jsonFlag bool // --json: export entries as JSON lines
	mdFlag   bool // --md: export entries as a Markdown table

	resumeFile string // --resume: cursor cache to read/write

	configFile string // --config: YAML defaults file, overrides ~/.quellogrc
	listEnum   string // --list-enum: print accumulated values for this field and exit
)

// rootCmd is the main command for the quellogd CLI.
var rootCmd = &cobra.Command{
	Use:   "quellogd [files or dirs]",
	Short: "Multi-format log ingestion and time-ordered merge",
	Long: `quellogd ingests log files and archives from multiple modules and
streams their entries back in time order.

It auto-detects each file's format from a catalog of format definitions,
probes the time range each file covers, and merges every admitted module
into one ordered stream, forward or reverse, resumable across runs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

// Execute runs the root command. Called by main.go to start the CLI.
func Execute(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

func init() {
	rootCmd.Flags().StringSliceVarP(&moduleFilter, "module", "m", nil,
		"Restrict ingestion to these modules. Can be specified multiple times")
	rootCmd.Flags().StringVar(&catalogDir, "catalog", "",
		"Directory of additional format definitions, tried before the builtin catalog")
	rootCmd.Flags().BoolVar(&noBuiltin, "no-builtin", false,
		"Skip the embedded builtin format catalog")

	rootCmd.Flags().StringVarP(&beginTime, "begin", "b", "",
		"Lower time bound (format: 2006-01-02 15:04:05)")
	rootCmd.Flags().StringVarP(&endTime, "end", "e", "",
		"Upper time bound (format: 2006-01-02 15:04:05)")

	rootCmd.Flags().BoolVarP(&reverseFlag, "reverse", "r", false,
		"Iterate newest entries first")

	rootCmd.Flags().StringSliceVar(&filterModule, "filter-module", nil,
		"Post-merge module allowlist, comma-separated")
	rootCmd.Flags().StringSliceVar(&filterField, "filter-field", nil,
		"Post-merge field filter as name=value, repeatable")

	rootCmd.Flags().BoolVarP(&jsonFlag, "json", "J", false,
		"Export entries as JSON lines")
	rootCmd.Flags().BoolVar(&mdFlag, "md", false,
		"Export entries as a Markdown table")

	rootCmd.Flags().StringVar(&resumeFile, "resume", "",
		"Cursor cache file: read to resume, written on completion")

	rootCmd.Flags().StringVar(&configFile, "config", "",
		"YAML defaults file (default: ~/.quellogrc, if present)")
	rootCmd.Flags().StringVar(&listEnum, "list-enum", "",
		"Print accumulated distinct values observed for this field, then exit")
}
