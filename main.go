package main

import "github.com/theirongolddev/fireplot/cmd"

func main() {
	cmd.Execute()
}
