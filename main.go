package main

import "github.com/albumpress/albumpress/cmd"

func main() {
	cmd.Execute()
}
