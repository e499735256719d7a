package main

import "github.com/demesup/awale/internal/cli"

func main() {
	cli.Execute()
}
