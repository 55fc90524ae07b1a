// Command reseau renders, inspects, fetches and serves the French media
// ownership network.
package main

import (
	"os"

	"github.com/ha1tch/reseau/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		ui.Bad.Fprintf(os.Stderr, "reseau: %v\n", err)
		os.Exit(1)
	}
}
