package main

import (
	"fmt"
	"os"

	"github.com/de-tools/spend-watch/pkg/runtime/terminal"
	"github.com/de-tools/spend-watch/pkg/services/usage"
	"github.com/de-tools/spend-watch/pkg/services/usage/aws_ce"
	"github.com/de-tools/spend-watch/pkg/services/usage/azure"
	"github.com/de-tools/spend-watch/pkg/services/usage/oci"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Registry: usage.NewRegistry(map[string]usage.ClientFactory{
			"oci":   oci.ClientFactory,
			"aws":   aws_ce.ClientFactory,
			"azure": azure.ClientFactory,
		}),
		Output: os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
