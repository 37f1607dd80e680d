package main

import "github.com/LeJamon/marketd/internal/cli"

func main() {
	cli.Execute()
}
