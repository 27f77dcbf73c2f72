package main

import "github.com/arenadata/dbinit/cmd"

func main() {
	cmd.Execute()
}
