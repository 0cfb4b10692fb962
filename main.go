package main

import "github.com/instaintelli/cli/internal/cmd"

func main() {
	cmd.Execute()
}
