package main

import (
	"github.com/shoe7ess/FrostyToolsuite/cli"
)

func main() {
	cli.Start()
}
