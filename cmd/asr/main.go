package main

import "sensevoice-asr/cmd/asr/cmd"

func main() {
	cmd.Execute()
}
