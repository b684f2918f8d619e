package main

import "github.com/hlindberg/tt/cmd"

func main() {
	cmd.Execute()
}
