package main

import (
	"waxcrate/cmd"
)

func main() {
	cmd.Execute()
}
