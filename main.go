package main

import "github.com/KaramelBytes/luxboard/cmd"

func main() {
	cmd.Execute()
}
