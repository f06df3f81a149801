package main

import "github.com/nhle/mailterm/internal/cli"

func main() {
	cli.Execute()
}
