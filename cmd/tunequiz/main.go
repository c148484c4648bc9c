package main

import "github.com/tunequiz/tunequiz/internal/cli"

func main() {
	cli.Execute()
}
