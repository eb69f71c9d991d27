package main

import "todo_webapp/internal/cli"

func main() {
	cli.Execute()
}
