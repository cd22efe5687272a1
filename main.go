package main

import (
	"github.com/punchingpaco/pacodeploy/command/root"
)

func main() {
	root.NewRootCommand().Execute()
}
