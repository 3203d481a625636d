package main

import "github.com/statlab-vienna/surveygraph/cmd"

func main() {
	cmd.Execute()
}
