package main

import "github.com/iksnae/meeting-client/cmd"

func main() {
	cmd.Execute()
}
