// Command mergetree builds join/split merge trees from a mesh and scalar
// field file.
package main

import (
	"github.com/topomesh/mergetree/cmd/cli/cmd"
)

func main() {
	cmd.Execute()
}
