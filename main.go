package main

import "github.com/KaramelBytes/chartlens/cmd"

func main() {
	cmd.Execute()
}
