package main

import "codearch/cmd"

func main() {
	cmd.Execute()
}
