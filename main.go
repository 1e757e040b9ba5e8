package main

import "github.com/tanema/annotate/cmd"

func main() {
	cmd.Execute()
}
