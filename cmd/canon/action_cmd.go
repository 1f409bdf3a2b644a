package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/canon/internal/cli"
	"github.com/sgx-labs/canon/internal/dispatch"
)

// runAction dispatches actionName with the joined args as input, printing
// either the human-readable assistant_text or the full JSON envelope.
func runAction(actionName string, args []string, canonURL string, jsonOut bool) error {
	d, err := newDispatcher()
	if err != nil {
		return err
	}

	env := d.Dispatch(context.Background(), dispatch.Request{
		Action:   actionName,
		Input:    strings.Join(args, " "),
		CanonURL: canonURL,
	})

	if jsonOut {
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(env.AssistantText)
	for _, w := range env.Debug.Warnings {
		cli.Warnf("%s", w)
	}
	return nil
}

func searchCmd() *cobra.Command {
	var jsonOut bool
	var canonURL string
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the corpus for relevant documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("search", args, canonURL, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the full response envelope as JSON")
	cmd.Flags().StringVar(&canonURL, "baseline-url", "", "Override the configured baseline URL for this call")
	return cmd
}

func catalogCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List available documents by start-here flag and tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !jsonOut {
				cli.Header("canon catalog: " + cli.ShortenHome(corpusRoot))
			}
			return runAction("catalog", nil, "", jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the full response envelope as JSON")
	return cmd
}

func preflightCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "preflight [scope]",
		Short: "Get the menu, constraints, pitfalls, and definition-of-done for a scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("preflight", args, "", jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the full response envelope as JSON")
	return cmd
}

func validateCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "validate [claim]",
		Short: "Check a completion claim against fixed completion/artifact markers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("validate", args, "", jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the full response envelope as JSON")
	return cmd
}

func orientCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "orient [description]",
		Short: "Detect working mode and return the start-here menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("orient", args, "", jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the full response envelope as JSON")
	return cmd
}

func challengeCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "challenge [query]",
		Short: "Search and surface intent-band tensions among the top 3 matching candidates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("challenge", args, "", jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the full response envelope as JSON")
	return cmd
}

func gateCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "gate [scope]",
		Short: "Check fixed prerequisites for a scope before proceeding",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("gate", args, "", jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the full response envelope as JSON")
	return cmd
}

func encodeCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "encode [summary]",
		Short: "Generate a filled decision-artifact template",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("encode", args, "", jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the full response envelope as JSON")
	return cmd
}

func getCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "get [ref]",
		Short: "Fetch a document's content by ref (k-scheme://... or o-scheme://...)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("get", args, "", jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the full response envelope as JSON")
	return cmd
}

func versionCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Report tool version, schema version, and resolved baseline commit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("version", nil, "", jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the full response envelope as JSON")
	return cmd
}

func cleanupCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove stale baseline cache directories (storage hygiene only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction("cleanup", nil, "", jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the full response envelope as JSON")
	return cmd
}
