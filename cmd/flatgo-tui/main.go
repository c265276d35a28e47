// Copyright (c) 2025 Neomantra Corp

// flatgo-tui is a local schema/buffer browser: a huh form collects
// the schema path, an optional buffer to decode, and the root type
// name, then a bubbletea program lets you browse both.
package main

import (
	"fmt"
	"os"

	flatgo_tui "github.com/flatgo-project/flatgo/internal/tui"
	"github.com/charmbracelet/huh"
	"github.com/spf13/pflag"
)

func main() {
	var config flatgo_tui.Config
	var showHelp bool

	pflag.StringVarP(&config.SchemaPath, "schema", "s", "", "FlatBuffers schema file")
	pflag.StringVarP(&config.TypeName, "type", "t", "", "Root type name (defaults to the schema's root_type)")
	pflag.StringVarP(&config.BufferPath, "buffer", "b", "", "Buffer file to open immediately")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.Parse()

	if showHelp {
		fmt.Fprintf(os.Stdout, "usage: %s [options]\n\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(0)
	}

	if config.SchemaPath == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("FlatBuffers schema file").
					Value(&config.SchemaPath),
				huh.NewInput().
					Title("Root type name (blank for schema's root_type)").
					Value(&config.TypeName),
				huh.NewInput().
					Title("Buffer file to open (optional)").
					Value(&config.BufferPath),
			))
		if err := form.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "form error: %s\n", err.Error())
			os.Exit(1)
		}
	}

	if config.SchemaPath == "" {
		fmt.Fprintf(os.Stderr, "missing schema file, use -s/--schema\n")
		os.Exit(1)
	}

	if err := flatgo_tui.Run(config); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
}
