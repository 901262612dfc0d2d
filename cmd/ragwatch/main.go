package main

import (
	"fmt"
	"os"

	"github.com/sechaba/ragwatch/internal/cli"
	"github.com/sechaba/ragwatch/internal/tracker"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("ragwatch\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("SQLite Driver: %s (%s)\n", tracker.DriverName, tracker.BuildMode)
		os.Exit(0)
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
