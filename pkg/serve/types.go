package serve

import (
	"encoding/json"

	"github.com/quillcheck/quillcheck/pkg/types"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "check" | "categories" | "close"
	Payload json.RawMessage `json:"payload"`
}

// CheckPayload is the payload for "check" requests: the API-level check
// shape. ID maps to the document id.
type CheckPayload struct {
	ID          string            `json:"id,omitempty"`
	SetID       string            `json:"setId"`
	CategoryIDs []string          `json:"categoryIds,omitempty"`
	Blocks      []types.TextBlock `json:"blocks"`
}

// CheckData is the data field for "check" responses.
type CheckData struct {
	Input   string       `json:"input"`
	Results CheckResults `json:"results"`
}

// CheckResults carries what was checked and what was found.
type CheckResults struct {
	CategoryIDs []string           `json:"categoryIds"`
	Matches     []*types.RuleMatch `json:"matches"`
}

// CategoriesData is the data field for "categories" responses.
type CategoriesData struct {
	Categories []types.Category `json:"categories"`
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"` // "ready" | "check" | "categories"; errors use the request type, "decode" or "unknown"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version string `json:"version"`
}
