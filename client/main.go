package main

import "source.quilibrium.com/quilibrium/monorepo/client/cmd"

func main() {
	cmd.Execute()
}
