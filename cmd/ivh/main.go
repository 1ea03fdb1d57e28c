package main

import "github.com/javanhut/ivaldi-history/cli"

func main() {
	cli.Execute()
}
