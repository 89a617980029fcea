package main

import "github.com/reliquary/relic/cmd"

func main() {
	cmd.Execute()
}
