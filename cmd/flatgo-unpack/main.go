// Copyright (c) 2025 Neomantra Corp

// flatgo-unpack decodes a single FlatBuffers buffer and prints its
// native representation as JSON or YAML.
package main

import (
	"fmt"
	"os"

	"github.com/flatgo-project/flatgo"
	"github.com/flatgo-project/flatgo/internal/cliutil"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Exit codes: 0 success, 1 usage, 2 parse error, 3 decode error.
const (
	exitSuccess    = 0
	exitUsage      = 1
	exitParseError = 2
	exitDecodeErr  = 3
)

func main() {
	var (
		schemaPath string
		namespace  string
		typeName   string
		format     string
		outPath    string
	)
	flags := pflag.NewFlagSet("flatgo-unpack", pflag.ContinueOnError)
	flags.StringVarP(&schemaPath, "schema", "s", "", "FlatBuffers schema file (required)")
	flags.StringVarP(&namespace, "namespace", "n", "", "Namespace the schema must declare (exit 2 on mismatch)")
	flags.StringVarP(&typeName, "type", "t", "", "Root type name (defaults to the schema's root_type)")
	flags.StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	flags.StringVarP(&outPath, "out", "o", "", "Output file (defaults to stdout)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
	args := flags.Args()
	if schemaPath == "" || len(args) != 1 || (format != "json" && format != "yaml") {
		fmt.Fprintln(os.Stderr, "usage: flatgo-unpack -s SCHEMA [-n NAMESPACE] [-t TYPE] [-f {json,yaml}] [-o OUT] INPUT")
		os.Exit(exitUsage)
	}
	inputPath := args[0]

	reg, err := cliutil.LoadRegistry(schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitParseError)
	}
	if namespace != "" && reg.Schema().Namespace != namespace {
		fmt.Fprintf(os.Stderr, "error: schema namespace %q does not match -n %q\n", reg.Schema().Namespace, namespace)
		os.Exit(exitParseError)
	}

	resolvedType, err := cliutil.ResolveType(reg, typeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitParseError)
	}

	buf, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: reading %s: %s\n", inputPath, err)
		os.Exit(exitDecodeErr)
	}

	root, err := fbs.DecodeRoot(buf, reg, resolvedType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: decoding %s: %s\n", inputPath, err)
		os.Exit(exitDecodeErr)
	}

	om, err := fbs.ToNative(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: converting %s: %s\n", inputPath, err)
		os.Exit(exitDecodeErr)
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: creating %s: %s\n", outPath, err)
			os.Exit(exitUsage)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "yaml":
		node := orderedMapToYAMLNode(om)
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		if err := enc.Encode(node); err != nil {
			fmt.Fprintf(os.Stderr, "error: encoding yaml: %s\n", err)
			os.Exit(exitDecodeErr)
		}
	default:
		jb, err := om.MarshalJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: encoding json: %s\n", err)
			os.Exit(exitDecodeErr)
		}
		fmt.Fprintf(out, "%s\n", jb)
	}
	os.Exit(exitSuccess)
}

// orderedMapToYAMLNode renders an OrderedMap (and any nested maps,
// slices, or scalars ToNative produces) as a yaml.Node tree, so
// key order is preserved the way MarshalJSON already preserves it --
// yaml.v3 has no ordered-map convenience of its own.
func orderedMapToYAMLNode(om *fbs.OrderedMap) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range om.Keys() {
		v, _ := om.Get(k)
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: k}
		node.Content = append(node.Content, keyNode, nativeValueToYAMLNode(v))
	}
	return node
}

func nativeValueToYAMLNode(v any) *yaml.Node {
	switch vv := v.(type) {
	case *fbs.OrderedMap:
		return orderedMapToYAMLNode(vv)
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, elem := range vv {
			node.Content = append(node.Content, nativeValueToYAMLNode(elem))
		}
		return node
	default:
		node := &yaml.Node{}
		_ = node.Encode(vv)
		return node
	}
}
