package main

import "eadrag/internal/cli"

func main() {
	cli.Execute()
}
