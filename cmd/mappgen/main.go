// Command mappgen generates the Mapp bindings and wire schema from a
// Signature Table.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
