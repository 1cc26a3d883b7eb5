package main

import (
	"os"

	"github.com/m44rten1/groundwork/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
