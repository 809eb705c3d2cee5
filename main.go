package main

import "github.com/carvecad/carve/cmd"

func main() {
	cmd.Execute()
}
