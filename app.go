package main

import "github.com/patchset-tools/merge-report/cmd"

func main() {
	cmd.Run()
}
