package main

import "github.com/proxystack/wasmbench/cmd"

func main() {
	cmd.Execute()
}
