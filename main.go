package main

import "github.com/soluify/bridgeboard/internal/cmd"

func main() {
	cmd.Execute()
}
