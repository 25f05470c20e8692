package main

import "github.com/zwade/scenic/cmd/scenic/cmd"

func main() {
	cmd.Execute()
}
