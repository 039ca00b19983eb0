package main

import "nathanbeddoewebdev/ccev/cmd"

func main() {
	cmd.Execute()
}
