package tools

import (
	"encoding/json"
	"strings"

	"github.com/fredgpt/server/internal/agent/model"
)

// Result is the uniform outcome of an adapter call. Adapters never return Go
// errors; a failed upstream call is a Result with Error set and a readable Message.
type Result struct {
	Message  string
	Payload  any
	Error    string
	Guidance string

	// Source overrides Payload in the caller-facing source record.
	Source any

	Attachments []model.Attachment
	SeriesData  []model.SeriesBlock
	Docs        []model.Document
	Queries     []string
}

func failed(msg string, err error) Result {
	return Result{Message: msg, Error: err.Error()}
}

// Content renders the tool-response text the model sees.
func (r Result) Content() string {
	var b strings.Builder
	b.WriteString(r.Message)
	if r.Error != "" && !strings.Contains(r.Message, r.Error) {
		b.WriteString("\nError: ")
		b.WriteString(r.Error)
	}
	if r.Payload != nil {
		if raw, err := json.MarshalIndent(r.Payload, "", "  "); err == nil {
			b.WriteString("\n")
			b.Write(raw)
		}
	}
	if r.Guidance != "" {
		b.WriteString("\n\n")
		b.WriteString(r.Guidance)
	}
	return b.String()
}

func (r Result) sourceOutput() any {
	if r.Source != nil {
		return r.Source
	}
	return r.Payload
}
