// Command takeoff is the construction takeoff CLI.
package main

import (
	"os"

	"github.com/mesh-intelligence/takeoff/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
