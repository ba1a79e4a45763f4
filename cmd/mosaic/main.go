package main

import "github.com/tamasfe/mosaic/cmd/mosaic/commands"

func main() {
	commands.Execute()
}
