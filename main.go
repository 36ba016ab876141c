package main

import "github.com/subtrack-cli/subtrack/cmd"

func main() {
	cmd.Execute()
}
