// The main package for the bipwatch executable.
package main

import (
	"github.com/bipwatch/crawler/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
