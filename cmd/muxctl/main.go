package main

import "analog-mux/cmd/muxctl/cmd"

func main() {
	cmd.Execute()
}
