// Command routesplit splits raw route-planning exports into one document per
// planning session.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
