package model

import (
	"fmt"
	"strings"
)

// Attachment is a rendered chart handed to the caller alongside the answer.
type Attachment struct {
	Type     string `json:"type"`
	Source   string `json:"source"`
	Title    string `json:"title"`
	SeriesID string `json:"series_id"`
	Units    string `json:"units"`
	ChartURL string `json:"chart_url"`
}

// Point is one dated observation.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// SeriesBlock carries the most recent observations of a series.
type SeriesBlock struct {
	SeriesID  string  `json:"series_id"`
	Title     string  `json:"title"`
	Units     string  `json:"units"`
	Frequency string  `json:"frequency"`
	Notes     *string `json:"notes"`
	Points    []Point `json:"points"`
}

// SourceRecord is the caller-facing view of one executed tool call.
type SourceRecord struct {
	Tool   string         `json:"tool"`
	Input  map[string]any `json:"input,omitempty"`
	Output any            `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Document is one hit returned by the retrieval index.
type Document struct {
	ID       string         `json:"id,omitempty"`
	Content  string         `json:"content"`
	Score    float64        `json:"score,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// FormatDocuments renders documents as the XML-ish block shown to the model.
func FormatDocuments(docs []Document) string {
	if len(docs) == 0 {
		return "<documents></documents>"
	}
	var b strings.Builder
	b.WriteString("<documents>\n")
	for _, d := range docs {
		if d.ID != "" {
			fmt.Fprintf(&b, "<document id=%q>\n", d.ID)
		} else {
			b.WriteString("<document>\n")
		}
		b.WriteString(d.Content)
		b.WriteString("\n</document>\n")
	}
	b.WriteString("</documents>")
	return b.String()
}
