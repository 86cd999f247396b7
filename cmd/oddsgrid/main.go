// Command oddsgrid loads odds tables from the REST backend and prints them
// filtered, sorted and formatted.
package main

import (
	"os"

	"github.com/unkn0wn-root/oddsgrid/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
