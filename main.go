// Package main is the entry point for quellogd.
// quellogd ingests log files and archives from multiple modules, auto-detects
// their format from a catalog, and streams their entries back in time order.
package main

import (
	"github.com/DonRumata710/quellog/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
