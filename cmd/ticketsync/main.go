// Command ticketsync is the operator CLI: it extracts ticket keys, classifies
// and replays saved webhook payloads, and lists recently processed deliveries.
package main

import (
	"fmt"
	"os"

	"basegraph.app/ticketsync/core/config"
)

func main() {
	a := &app{
		out: os.Stdout,
		loadConfig: func() (config.Config, error) {
			return config.Load(config.ServiceTypeCLI)
		},
	}

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
