package main

import "bottlesmith/internal/cli"

func main() {
	cli.Execute()
}
