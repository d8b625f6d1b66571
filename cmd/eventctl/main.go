package main

import "eventadmin/internal/cli"

func main() {
	cli.Execute()
}
