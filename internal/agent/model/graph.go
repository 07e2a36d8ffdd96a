package model

import (
	"github.com/cloudwego/eino/schema"
)

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//   - Slices are append-only; earlier entries are never rewritten.
type AppState struct {
	ConversationID string
	Messages       []*schema.Message

	ToolCallCount   int  // executed tool calls this cycle
	BudgetExhausted bool // set once the limit notice has been issued
	ToolCallIDSeq   int  // sequence for synthesized tool_call ids

	Attachments   []Attachment
	SeriesData    []SeriesBlock
	Sources       []SourceRecord
	RetrievedDocs []Document
	Queries       []string

	// Accumulated total LLM cost (USD) across model invocations for this query
	TotalCostUSD float64
}

// RunInput is the new user message plus the prior turns it continues.
type RunInput struct {
	ConversationID string
	Text           string
	Conversation   []Turn
}

// FinalResponse is the terminal state serialized for the caller.
// ToolCallCount is nil when the model produced no usable content.
type FinalResponse struct {
	Response      string         `json:"response"`
	Attachments   []Attachment   `json:"attachments,omitempty"`
	SeriesData    []SeriesBlock  `json:"series_data,omitempty"`
	Sources       []SourceRecord `json:"sources,omitempty"`
	ToolCallCount *int           `json:"tool_call_count,omitempty"`
	CostUSD       float64        `json:"-"`
}
