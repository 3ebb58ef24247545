package main

import "github.com/poshell/poshell/cmd"

func main() {
	cmd.Execute()
}
