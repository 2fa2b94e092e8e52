package main

import "github.com/davarch/bwatch/cmd/bwatch/cli"

func main() {
	cli.Execute()
}
