package main

import (
	"github.com/spf13/cobra"

	"github.com/sgx-labs/canon/internal/mcpserver"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			mcpserver.Version = Version
			return mcpserver.Serve(corpusRoot)
		},
	}
}
