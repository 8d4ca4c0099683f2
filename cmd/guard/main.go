package main

import "github.com/jeremyhahn/go-guard/cmd/guard/cmd"

func main() {
	cmd.Execute()
}
