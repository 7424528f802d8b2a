package main

import "github.com/anoixa/registration-system/cmd"

func main() {
	cmd.Execute()
}
