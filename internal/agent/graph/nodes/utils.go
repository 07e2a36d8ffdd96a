package nodes

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/fredgpt/server/internal/agent/graph/tools"
	"github.com/fredgpt/server/internal/agent/model"
)

const (
	NodeInput    = "input"
	NodeAgent    = "agent"
	NodeTools    = "tools"
	NodeFinalize = "finalize"
)

const DefaultMaxToolCalls = 20

// NoResponse is returned when no message in the run carried content.
const NoResponse = "No response"

// NormalizeMaxToolCalls returns the default budget when n is not positive.
func NormalizeMaxToolCalls(n int) int {
	if n <= 0 {
		return DefaultMaxToolCalls
	}
	return n
}

// normalizeToolCallIDs gives every id-less tool call a synthetic call_<n> id
// so tool responses can always be matched to their request.
func normalizeToolCallIDs(state *model.AppState, msg *schema.Message) {
	if msg == nil {
		return
	}
	for i := range msg.ToolCalls {
		if strings.TrimSpace(msg.ToolCalls[i].ID) == "" {
			state.ToolCallIDSeq++
			msg.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
		}
	}
}

// providerView returns the history as sent to the model. Tool calls that were
// never answered (left over after the budget notice) are dropped from their
// assistant message; Gemini rejects unmatched function calls. Ids may repeat
// (the Gemini adapter uses the function name as id), so responses are counted
// per id and calls are kept in order up to that count. The stored messages
// are never modified.
func providerView(messages []*schema.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for i, msg := range messages {
		if msg == nil {
			continue
		}
		if msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
			out = append(out, msg)
			continue
		}

		answered := map[string]int{}
		responses := 0
		for _, next := range messages[i+1:] {
			if next == nil || next.Role != schema.Tool {
				break
			}
			answered[next.ToolCallID]++
			responses++
		}
		if responses >= len(msg.ToolCalls) {
			out = append(out, msg)
			continue
		}

		trimmed := *msg
		trimmed.ToolCalls = make([]schema.ToolCall, 0, responses)
		for _, tc := range msg.ToolCalls {
			if answered[tc.ID] > 0 {
				answered[tc.ID]--
				trimmed.ToolCalls = append(trimmed.ToolCalls, tc)
			}
		}
		out = append(out, &trimmed)
	}
	return out
}

// lastContent returns the newest non-empty content that did not come from the
// user. The budget notice is an instruction to the model and never an answer.
func lastContent(messages []*schema.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg == nil || msg.Role == schema.User || msg.Role == schema.System {
			continue
		}
		if msg.Role == schema.Tool && msg.Content == tools.BudgetNotice {
			continue
		}
		if strings.TrimSpace(msg.Content) != "" {
			return msg.Content, true
		}
	}
	return "", false
}
