package main

import "github.com/naka-gawa/github-search/cmd"

func main() {
	cmd.Execute()
}
