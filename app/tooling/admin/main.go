// This program performs administrative tasks for the blockchain node.
package main

import (
	"fmt"
	"os"

	"github.com/ardanlabs/powchain/app/tooling/admin/commands"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {
	if err := commands.Execute(build); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
