package main

import "github.com/EvilLord666/warden/internal/cli"

func main() {
	cli.Execute()
}
