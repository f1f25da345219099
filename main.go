// Command ddldiff is the CLI entry point; see package
// github.com/ddldiff/ddldiff/cmd/ddldiff for the command tree.
package main

import (
	"os"

	"github.com/ddldiff/ddldiff/cmd/ddldiff"
)

func main() {
	ddldiff.Execute(os.Args[1:]...)
}
