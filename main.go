package main

import "github.com/KaramelBytes/dqreport/cmd"

func main() {
	cmd.Execute()
}
