package main

import "github.com/cameronsjo/pipegen/internal/cmd"

func main() {
	cmd.Execute()
}
