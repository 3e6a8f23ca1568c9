package main

import "refdesk/internal/cli"

func main() {
	cli.Execute()
}
