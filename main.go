package main

import "github.com/devdeck/devdeck/cmd"

func main() {
	cmd.Execute()
}
