// Package mcpserver exposes the action dispatcher over MCP, one tool per
// closed action, in the teacher's own registerTools/handleX shape.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sgx-labs/canon/internal/baseline"
	"github.com/sgx-labs/canon/internal/config"
	"github.com/sgx-labs/canon/internal/dispatch"
)

// Version is set by the caller (cmd/canon) before calling Serve.
var Version = "dev"

var dispatcher *dispatch.Dispatcher

// Serve starts the MCP server on stdio, backed by a dispatcher rooted at
// corpusRoot.
func Serve(corpusRoot string) error {
	cfg, err := config.Load(corpusRoot)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cache := baseline.New(cfg.Baseline.CacheRoot)
	dispatcher = dispatch.New(cfg, cache, cfg.State.Dir, Version)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "canon",
		Version: Version,
	}, nil)

	registerTools(server)

	return server.Run(context.Background(), &mcp.StdioTransport{})
}

func registerTools(server *mcp.Server) {
	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true}
	boolPtr := func(b bool) *bool { return &b }
	writeNonDestructive := &mcp.ToolAnnotations{DestructiveHint: boolPtr(false), IdempotentHint: true}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Search the governing corpus and baseline for documents relevant to a query. Returns arbitrated candidates (with intent-veto applied), evidence quotes for the top 3, and an outcome of prefer/defer/escalate.\n\nArgs:\n  input: Natural language query.\n  canon_url: Optional baseline override for this call.",
		Annotations: readOnly,
	}, handleAction("search"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "catalog",
		Description: "List available documents grouped by start-here flag and tag, with no bodies or quotes. Use this to see what exists before diving into search.",
		Annotations: readOnly,
	}, handleAction("catalog"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "preflight",
		Description: "Before starting work in a scope, get the menu, governing-band constraints, operational-band pitfalls, and the definition-of-done document for that scope.\n\nArgs:\n  input: Scope (a path fragment or tag).",
		Annotations: readOnly,
	}, handleAction("preflight"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate",
		Description: "Check a completion claim against a fixed set of completion markers and artifact patterns. Returns VERIFIED, NEEDS_ARTIFACTS, or CLARIFY.\n\nArgs:\n  input: The claim text (e.g. 'done, see test-output.log').",
	}, handleAction("validate"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "orient",
		Description: "Detect the caller's working mode (debugging/building/reviewing/exploring) from fixed phrase tables and return the start-here menu.\n\nArgs:\n  input: Free text describing what the caller is doing.",
		Annotations: readOnly,
	}, handleAction("orient"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "challenge",
		Description: "Search for a query, then surface intent-band tensions among the top candidates (e.g. a promoted pattern next to a workaround on the same topic).\n\nArgs:\n  input: Natural language query.",
		Annotations: readOnly,
	}, handleAction("challenge"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "gate",
		Description: "Check fixed prerequisites (governing constraints identified, definition-of-done identified) for a scope before the caller proceeds.\n\nArgs:\n  input: Scope (a path fragment or tag).",
		Annotations: readOnly,
	}, handleAction("gate"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "encode",
		Description: "Generate a filled decision-artifact template (frontmatter + headings) for a decision summary, ready to be saved as a new note.\n\nArgs:\n  input: Short decision summary.",
		Annotations: writeNonDestructive,
	}, handleAction("encode"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get",
		Description: "Fetch a document's content by ref (k-scheme://local-path or o-scheme://baseline-path). Content is returned with XML-like tags and LLM instruction-override patterns neutralized.\n\nArgs:\n  input: The ref string.",
		Annotations: readOnly,
	}, handleAction("get"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "version",
		Description: "Report the tool version, index schema version, and the last-resolved baseline commit id.",
		Annotations: readOnly,
	}, handleAction("version"))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cleanup",
		Description: "Storage hygiene: remove cached baseline commit directories that no longer match the current commit id. Never required for correctness.",
	}, handleAction("cleanup"))
}

// actionInput is the uniform tool-call input shape: every canon tool
// accepts the same three fields, since the closed action set shares one
// request envelope (spec §6).
type actionInput struct {
	Input    string `json:"input,omitempty" jsonschema:"Free-text input for this action"`
	Context  string `json:"context,omitempty" jsonschema:"Optional caller-supplied context"`
	CanonURL string `json:"canon_url,omitempty" jsonschema:"Optional baseline URL override for this call"`
}

// handleAction builds an MCP tool handler that dispatches to the named
// closed action and returns the envelope's assistant_text, with the full
// machine-readable result attached as structured tool output.
func handleAction(name string) func(context.Context, *mcp.CallToolRequest, actionInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input actionInput) (*mcp.CallToolResult, any, error) {
		env := dispatcher.Dispatch(ctx, dispatch.Request{
			Action:   name,
			Input:    input.Input,
			Context:  input.Context,
			CanonURL: input.CanonURL,
		})
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return textResult("Error: could not encode result."), nil, nil
		}
		return textResult(env.AssistantText + "\n\n" + string(data)), env, nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
