package main

import "github.com/mcoot/battleship-client/internal/cli"

func main() {
	cli.Execute()
}
