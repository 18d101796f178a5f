package main

import "github.com/clipsight/clipsight/internal/cli"

func main() {
	cli.Execute()
}
