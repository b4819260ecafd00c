package main

import "github.com/mcoot/loginpage/internal/cli"

func main() {
	cli.Execute()
}
