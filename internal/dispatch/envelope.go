package dispatch

import "time"

// Request is the tool-call envelope request shape from spec §6.
type Request struct {
	Action   string                 `json:"action"`
	Input    string                 `json:"input,omitempty"`
	Context  string                 `json:"context,omitempty"`
	Mode     string                 `json:"mode,omitempty"`
	CanonURL string                 `json:"canon_url,omitempty"`
	State    map[string]interface{} `json:"state,omitempty"`
}

// Debug is the envelope's debug block.
type Debug struct {
	DurationMS     int64    `json:"duration_ms"`
	GeneratedAt    string   `json:"generated_at"`
	BaselineCommit string   `json:"baseline_commit,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

// Envelope is the uniform tool-call response shape from spec §6.
type Envelope struct {
	Action        string                 `json:"action"`
	Result        interface{}            `json:"result"`
	AssistantText string                 `json:"assistant_text"`
	Debug         Debug                  `json:"debug"`
	State         map[string]interface{} `json:"state,omitempty"`
}

// errorResult is the machine-readable shape of result.error (spec §7).
type errorResult struct {
	Error *ActionError `json:"error"`
}

func errorEnvelope(action string, aerr *ActionError, start time.Time) Envelope {
	return Envelope{
		Action:        action,
		Result:        errorResult{Error: aerr},
		AssistantText: assistantTextForError(action, aerr),
		Debug: Debug{
			DurationMS:  time.Since(start).Milliseconds(),
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func assistantTextForError(action string, aerr *ActionError) string {
	hint := "use action `catalog` to list available documents"
	if aerr.Code == KindUnknownAction {
		hint = "the closed action set is search, catalog, preflight, validate, orient, challenge, gate, encode, get, version, cleanup"
	}
	return aerr.Message + " (" + string(aerr.Code) + "); " + hint + "."
}
