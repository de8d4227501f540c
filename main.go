package main

import "github.com/CraigKelly/chainmar/cmd"

func main() {
	cmd.Execute()
}
