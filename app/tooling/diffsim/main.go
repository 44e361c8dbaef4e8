package main

import "github.com/R-Song/conflux-go/app/tooling/diffsim/cmd"

func main() {
	cmd.Execute()
}
