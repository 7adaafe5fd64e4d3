// Command influxbatch converts a sensor readings CSV into annotated CSV batches.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rshade/influxbatch/internal/cli"
	"github.com/rshade/influxbatch/pkg/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := cli.NewRootCmd(version.GetVersion())
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error occurred: %v\n", err)
		return 1
	}
	return 0
}
