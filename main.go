package main

import "didp/cmd"

func main() {
	cmd.Execute()
}
