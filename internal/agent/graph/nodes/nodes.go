package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/fredgpt/server/internal/agent/graph/conversations"
	"github.com/fredgpt/server/internal/agent/graph/prompts"
	"github.com/fredgpt/server/internal/agent/graph/tools"
	"github.com/fredgpt/server/internal/agent/model"
	logx "github.com/fredgpt/server/pkg/logger"
)

// NewInputPreHandler records the conversation id on the fresh run state.
func NewInputPreHandler() func(context.Context, model.RunInput, *model.AppState) (model.RunInput, error) {
	return func(ctx context.Context, in model.RunInput, s *model.AppState) (model.RunInput, error) {
		s.ConversationID = in.ConversationID
		return in, nil
	}
}

// NewInputNode seeds the run with prior turns plus the new user message.
func NewInputNode(mm *conversations.MessagesManager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.RunInput) ([]*schema.Message, error) {
		messages, err := mm.BuildHistory(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("build conversation history: %w", err)
		}
		return messages, nil
	})
}

// NewAgentPreHandler appends the incoming messages to state and returns the
// full model input: a freshly rendered system prompt followed by the history.
func NewAgentPreHandler(now func() time.Time) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		state.Messages = append(state.Messages, in...)

		system, err := prompts.RenderSystem(ctx, now(), state.RetrievedDocs)
		if err != nil {
			return nil, err
		}

		history := providerView(state.Messages)
		out := make([]*schema.Message, 0, len(history)+1)
		out = append(out, schema.SystemMessage(system))
		out = append(out, history...)

		logx.Debug().
			Str("conversation_id", state.ConversationID).
			Int("messages", len(out)).
			Int("tool_call_count", state.ToolCallCount).
			Msg("AI thinking...")
		return out, nil
	}
}

// NewAgentPostHandler normalizes tool-call ids, accumulates usage cost and
// appends the model output to state.
func NewAgentPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if out == nil {
			return nil, fmt.Errorf("model returned no message")
		}

		if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			pricing := model.ResolvePricing(modelName)
			inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
			logx.Debug().
				Str("conversation_id", state.ConversationID).
				Str("node", NodeAgent).
				Str("model", modelName).
				Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
				Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
				Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
				Float64("input_cost_usd", inC).
				Float64("output_cost_usd", outC).
				Float64("total_cost_usd", totalC).
				Msg("LLM usage")
			state.TotalCostUSD += totalC
		}

		normalizeToolCallIDs(state, out)
		state.Messages = append(state.Messages, out)

		if len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
		} else {
			logx.Debug().Msg("AI response ready")
		}
		return out, nil
	}
}

// NewAgentCondition routes to the tools node while the model asks for tools
// and the budget notice has not been issued yet.
func NewAgentCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var exhausted bool
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			exhausted = state.BudgetExhausted
			return nil
		})
		if err != nil {
			return "", err
		}

		if exhausted {
			logx.Debug().Msg("Tool budget exhausted - finalizing")
			return NodeFinalize, nil
		}
		if input != nil && len(input.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to tools")
			return NodeTools, nil
		}
		return NodeFinalize, nil
	}
}

// NewToolsNode executes the requested calls through the dispatcher and folds
// the outcome into state. Its output is the tool responses for the next
// model call.
func NewToolsNode(d *tools.Dispatcher) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *schema.Message) ([]*schema.Message, error) {
		var used int
		var conversationID string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			used = state.ToolCallCount
			conversationID = state.ConversationID
			return nil
		})
		if err != nil {
			return nil, err
		}

		out := d.Dispatch(ctx, in.ToolCalls, used)

		err = compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			state.ToolCallCount += out.Executed
			if out.Exhausted {
				state.BudgetExhausted = true
			}
			state.Attachments = append(state.Attachments, out.Attachments...)
			state.SeriesData = append(state.SeriesData, out.SeriesData...)
			state.Sources = append(state.Sources, out.Sources...)
			state.RetrievedDocs = append(state.RetrievedDocs, out.Docs...)
			state.Queries = append(state.Queries, out.Queries...)
			used = state.ToolCallCount
			return nil
		})
		if err != nil {
			return nil, err
		}

		logx.Debug().
			Str("conversation_id", conversationID).
			Int("executed", out.Executed).
			Int("tool_call_count", used).
			Bool("budget_exhausted", out.Exhausted).
			Msg("Tool step finished")
		return out.Messages, nil
	})
}

// NewFinalizeNode builds the caller-facing response from the run state.
func NewFinalizeNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ *schema.Message) (*model.FinalResponse, error) {
		var resp *model.FinalResponse
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			content, ok := lastContent(state.Messages)
			if !ok {
				resp = &model.FinalResponse{Response: NoResponse, CostUSD: state.TotalCostUSD}
				return nil
			}
			count := state.ToolCallCount
			resp = &model.FinalResponse{
				Response:      content,
				Attachments:   state.Attachments,
				SeriesData:    state.SeriesData,
				Sources:       state.Sources,
				ToolCallCount: &count,
				CostUSD:       state.TotalCostUSD,
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
}
