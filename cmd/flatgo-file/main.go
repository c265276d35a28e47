// Copyright (c) 2025 Neomantra Corp

// flatgo-file processes size-prefixed FlatBuffers buffer streams: a
// schema-cache metadata dump, a bulk JSON printer, and a per-key file
// splitter.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/flatgo-project/flatgo"
	"github.com/flatgo-project/flatgo/internal/cliutil"
	"github.com/flatgo-project/flatgo/internal/file"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
)

var (
	verbose bool

	schemaPath string
	typeName   string

	destDir     string
	splitField  string
	zstdOutput  bool
	forceZstdIn bool
)

func requireNoErrorWithoutPrint(err error) {
	if err != nil {
		os.Exit(1)
	}
}

func main() {
	cobra.OnInitialize()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&schemaPath, "schema", "s", "", "FlatBuffers schema file (required)")
	rootCmd.PersistentFlags().StringVarP(&typeName, "type", "t", "", "Root type name (defaults to the schema's root_type)")
	rootCmd.MarkPersistentFlagRequired("schema")

	rootCmd.AddCommand(metadataCmd)
	metadataCmd.Flags().BoolVarP(&forceZstdIn, "zstd", "z", false, "Input is zstd (useful for handling zstd on stdin)")

	rootCmd.AddCommand(jsonCmd)
	jsonCmd.Flags().BoolVarP(&forceZstdIn, "zstd", "z", false, "Input is zstd (useful for handling zstd on stdin)")

	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().BoolVarP(&forceZstdIn, "zstd", "z", false, "Input is zstd (useful for handling zstd on stdin)")
	splitCmd.Flags().StringVarP(&destDir, "dest", "d", "", "Destination directory")
	splitCmd.Flags().StringVar(&splitField, "split-field", "", "Top-level native field to key output files by (defaults to one shared file)")
	splitCmd.Flags().BoolVarP(&zstdOutput, "zstd-output", "Z", false, "Compress split output files with zstd")
	splitCmd.MarkFlagRequired("dest")

	err := rootCmd.Execute()
	requireNoErrorWithoutPrint(err)
}

var rootCmd = &cobra.Command{
	Use:   "flatgo-file",
	Short: "flatgo-file processes size-prefixed FlatBuffers buffer files",
	Long:  "flatgo-file processes size-prefixed FlatBuffers buffer files",
}

var metadataCmd = &cobra.Command{
	Use:   "metadata file...",
	Short: "Prints a schema cache summary (declared type names and source hash) as JSON",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := cliutil.LoadRegistry(schemaPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
		source, err := os.ReadFile(schemaPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
		entry := fbs.NewSchemaCacheEntry(source, reg.Schema())
		jstr, err := json.Marshal(struct {
			SourceHash string   `json:"source_hash"`
			Names      []string `json:"names"`
		}{
			SourceHash: hex.EncodeToString(entry.SourceHash[:]),
			Names:      entry.Names,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to marshal schema metadata: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s\n", jstr)

		for _, sourceFile := range args {
			if err := printBufferInfo(sourceFile); err != nil {
				fmt.Fprintf(os.Stderr, "error: reading %s: %s\n", sourceFile, err.Error())
			}
		}
	},
}

func printBufferInfo(sourceFile string) error {
	info, err := os.Stat(sourceFile)
	if err != nil {
		return fmt.Errorf("stat failed: %w", err)
	}
	fmt.Printf("%s\t%s\n", sourceFile, humanize.Bytes(uint64(info.Size())))
	return nil
}

var jsonCmd = &cobra.Command{
	Use:   "json file...",
	Short: "Prints the specified file's records as newline-delimited JSON",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := cliutil.LoadRegistry(schemaPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
		resolvedType, err := cliutil.ResolveType(reg, typeName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
		for _, sourceFile := range args {
			if err := file.WriteBufferFileAsJSON(sourceFile, forceZstdIn, reg, resolvedType, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "error: reading %s: %s\n", sourceFile, err.Error())
			}
		}
	},
}

var splitCmd = &cobra.Command{
	Use:   "split file...",
	Short: `Splits a size-prefixed stream into one file per distinct --split-field value`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if destDir == "" {
			fmt.Fprintf(os.Stderr, "error: --dest cannot be empty. Use '.' for current directory.\n")
			os.Exit(1)
		}
		if err := os.MkdirAll(destDir, os.ModePerm); err != nil {
			fmt.Fprintf(os.Stderr, "error: dest directory creation failed with: %s\n", err.Error())
			os.Exit(1)
		}
		reg, err := cliutil.LoadRegistry(schemaPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
		resolvedType, err := cliutil.ResolveType(reg, typeName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
		for _, sourceFile := range args {
			if err := file.SplitFile(sourceFile, destDir, forceZstdIn, reg, resolvedType, splitField, zstdOutput, verbose); err != nil {
				fmt.Fprintf(os.Stderr, "error: splitting %s: %s\n", sourceFile, err.Error())
			}
		}
	},
}
