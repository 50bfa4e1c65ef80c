package main

import "flowengine/cmd/flowctl/cmd"

func main() {
	cmd.Execute()
}
