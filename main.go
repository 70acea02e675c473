package main

import "github.com/saps-platform/case-management/cmd"

func main() {
	cmd.Execute()
}
