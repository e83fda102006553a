package main

import "github.com/naka-gawa/repo-health/cmd"

func main() {
	cmd.Execute()
}
