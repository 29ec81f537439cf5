package main

import "github.com/notargets/mshimport/cmd"

func main() {
	cmd.Execute()
}
