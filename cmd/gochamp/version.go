package main

import (
	"fmt"
	"runtime"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

const appName = "gochamp"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No config or client is needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(*cobra.Command, []string) error {
			banner := figure.NewFigure(appName, "cybermedium", true)
			_, err := fmt.Fprintf(c.out, "%s\n%s %s (%s/%s, %s)\n",
				banner.String(), appName, version, runtime.GOOS, runtime.GOARCH, runtime.Version())
			return err
		},
	}
}
