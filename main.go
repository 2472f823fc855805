package main

import "github.com/ftl/rxpanel/cmd"

func main() {
	cmd.Execute()
}
