package main

import "github.com/parseltongue-dev/parseltongue/internal/cli"

func main() {
	cli.Execute()
}
