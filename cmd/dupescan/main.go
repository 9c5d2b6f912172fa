package main

import (
	"flag"
	"fmt"
	"os"

	"dupescan/internal/di"
	"dupescan/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the YAML configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "echo logs to the console")
	flag.BoolVar(&flags.CompareOnly, "compare", false, "skip enumeration and sampling, compare the existing catalog")
	flag.BoolVar(&flags.SubClips, "subclips", false, "also search for contained sub-clips")
	flag.Parse()

	app, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %s\n", err)
		os.Exit(1)
	}

	if err := app.Run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "scan: %s\n", err)
		os.Exit(1)
	}
}
