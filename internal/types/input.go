package types

// Input is a single unit of text presented for scanning, tagged with where
// it came from. Guardrails scan every source the same way; policy rules may
// treat sources differently.
type Input struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

const (
	SourceUser      = "user"
	SourceTool      = "tool"
	SourceRetrieval = "retrieval"
)
