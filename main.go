package main

import "github.com/xhs-publisher/cmd"

func main() {
	cmd.Execute()
}
