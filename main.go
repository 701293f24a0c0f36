package main

import "github.com/Amama-Fatima/github-insights/cmd"

func main() {
	cmd.Execute()
}
