package main

import "github.com/notargets/gomlmg/cmd"

func main() {
	cmd.Execute()
}
