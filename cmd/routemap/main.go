package main

import "routemap/cmd/routemap/cmd"

func main() {
	cmd.Execute()
}
