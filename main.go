package main

import (
	"github.com/jhux2/nalu-wind/cmd"
)

func main() {
	cmd.Execute()
}
