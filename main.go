package main

import "github.com/procboost/boostd/cmd"

func main() {
	cmd.Execute()
}
