package main

import "github.com/jsphweid/taikoshift/cmd"

func main() {
	cmd.Execute()
}
