// Package main is the entrypoint for the canon CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

// corpusRoot is the global --corpus flag: the local corpus root every
// subcommand operates against.
var corpusRoot string

func main() {
	root := &cobra.Command{
		Use:   "canon",
		Short: "Retrieval and arbitration over a governing document corpus",
		Long: `canon indexes a local corpus of markdown notes alongside a
remote baseline corpus, scores and arbitrates candidates for a query, and
exposes the result to AI coding agents over MCP or the command line.

Quick Start:
  canon search "retry policy"   Search the corpus from the command line
  canon serve                   Start the MCP server on stdio
  canon version                 Report tool/schema/baseline versions`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.PersistentFlags().StringVar(&corpusRoot, "corpus", ".", "Local corpus root")

	root.AddCommand(searchCmd())
	root.AddCommand(catalogCmd())
	root.AddCommand(preflightCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(orientCmd())
	root.AddCommand(challengeCmd())
	root.AddCommand(gateCmd())
	root.AddCommand(encodeCmd())
	root.AddCommand(getCmd())
	root.AddCommand(versionCmd())
	root.AddCommand(cleanupCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(watchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
