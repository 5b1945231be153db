package main

import "github.com/vidtools/autocut/internal/cli"

func main() {
	cli.Main()
}
