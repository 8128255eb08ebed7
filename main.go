package main

import "github.com/xvierd/pomodore/cmd"

func main() {
	cmd.Execute()
}
