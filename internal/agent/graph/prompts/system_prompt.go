package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/fredgpt/server/internal/agent/model"
)

// BlockedMessage is the canned refusal for monetary or fiscal policy opinions.
const BlockedMessage = "I’m not able to discuss monetary or fiscal policy opinions/recommendations.\n" +
	"I can help with data (e.g., FRED series values, sources, metadata, charts)\n" +
	"or quote official statements."

//go:embed template/system_prompt.txt
var systemPrompt string

// RenderSystem renders the system instruction for one model call. Rendering
// goes through the eino prompt component so prompt callbacks fire.
func RenderSystem(ctx context.Context, now time.Time, docs []model.Document) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"SystemTime":     now.UTC().Format(time.RFC3339),
		"RetrievedDocs":  model.FormatDocuments(docs),
		"BlockedMessage": BlockedMessage,
	})
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}
