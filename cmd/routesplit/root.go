package main

import (
	"io"

	"github.com/spf13/cobra"
)

// NewRootCommand returns the routesplit command tree with its output bound to
// the given streams.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "routesplit",
		Short: "Split route-planning exports across planning sessions",
		Long: `routesplit reads single-line XML exports, chunks and parses their records,
groups them by origin and route, and distributes the groups over an ordered
list of planning sessions so that every session receives a similar load.

Each session's records are written as one document; an assignment manifest
records which group went where.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)

	rc.AddCommand(newRunCommand(stdin, stdout, stderr))
	rc.AddCommand(newConfigCommand(stdin, stdout, stderr))

	return rc
}
