package main

import (
	"fmt"
	"os"

	"TrackingServer/internal/cli"
)

func main() {
	args := os.Args[1:]

	if ok, cmd := cli.ParseFlags(args); ok {
		if err := cmd.Run(); err != nil {
			fmt.Printf("%s failed: %v\n", cmd.Name(), err)
			os.Exit(1)
		}
	}
}
