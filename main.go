package main

import (
	"github.com/duythanhle/live-beats/cmd"
)

func main() {
	cmd.Execute()
}
