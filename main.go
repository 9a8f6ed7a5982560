package main

import "github.com/stevemurr/string-analysis-server/commands"

func main() {
	commands.Execute()
}
