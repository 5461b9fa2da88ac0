package main

import "noisemap/cmd/client/cmd"

func main() {
	cmd.Execute()
}
