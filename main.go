package main

import "github.com/mjurczak/watchmap/cmd"

func main() {
	cmd.Execute()
}
