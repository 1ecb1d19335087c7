package main

import "github.com/nikogura/portfolio-forge/cmd"

func main() {
	cmd.Execute()
}
