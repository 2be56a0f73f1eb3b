package main

import "github.com/castmesh/vtkcombine/cmd"

func main() {
	cmd.Execute()
}
