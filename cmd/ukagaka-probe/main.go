// Command ukagaka-probe plays the host side of the ukagaka plugin ABI
// against a wasip1 plugin module: it loads the module, calls its entry
// points the way a baseware would, and checks the results.
package main

import (
	"fmt"
	"os"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
