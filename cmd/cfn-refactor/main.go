package main

import "github.com/mvp-joe/cfn-refactor/internal/cli"

func main() {
	cli.Execute()
}
