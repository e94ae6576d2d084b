// Command ddmview compiles search condition specs to PostgreSQL views and
// indexes.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/epam/edp-ddm-liquibase-ddm-ext-sub001/internal/cli"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	root := cli.NewRootCommand()
	root.Version = Version

	if err := root.Execute(); err != nil {
		// Commands print their own errors; anything else gets a last line here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
