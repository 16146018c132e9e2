package main

import "github.com/jsphweid/dreamland/cmd"

func main() {
	cmd.Execute()
}
