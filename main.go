package main

import (
	"github.com/kvgrid/kvgrid/cmd"
)

func main() {
	cmd.Execute()
}
