package main

import "github.com/adamwoolhether/xhttp/internal/cli"

func main() {
	cli.Execute()
}
