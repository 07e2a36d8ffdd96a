package conversations

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/fredgpt/server/internal/agent/model"
	logx "github.com/fredgpt/server/pkg/logger"
)

// MessagesManager turns caller-supplied turns, or a stored session when the
// caller sends none, into model history.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
}

// NewMessagesManager accepts a nil repo; sessions are then disabled.
func NewMessagesManager(conversationRepo model.ConversationRepository) *MessagesManager {
	return &MessagesManager{conversationRepo: conversationRepo}
}

func (mm *MessagesManager) SessionsEnabled() bool {
	return mm != nil && mm.conversationRepo != nil
}

// BuildHistory returns the prior turns followed by the new user message.
// Only user and assistant turns with content are kept.
func (mm *MessagesManager) BuildHistory(ctx context.Context, in model.RunInput) ([]*schema.Message, error) {
	history := FromTurns(in.Conversation)

	if len(history) == 0 && in.ConversationID != "" && mm.SessionsEnabled() {
		stored, err := mm.conversationRepo.LoadHistory(ctx, in.ConversationID)
		if err != nil {
			return nil, err
		}
		history = keepDialogue(stored.Messages)
		logx.Debug().
			Str("conversation_id", in.ConversationID).
			Int("messages", len(history)).
			Msg("Loaded session history")
	}

	return append(history, schema.UserMessage(in.Text)), nil
}

// SaveTurn appends the exchange to the session. It is a no-op without a repo
// or conversation id.
func (mm *MessagesManager) SaveTurn(ctx context.Context, conversationID, question, answer string) error {
	if conversationID == "" || !mm.SessionsEnabled() {
		return nil
	}
	messages := []*schema.Message{schema.UserMessage(question)}
	if strings.TrimSpace(answer) != "" {
		messages = append(messages, schema.AssistantMessage(answer, nil))
	}
	return mm.conversationRepo.Append(ctx, conversationID, messages...)
}

// FromTurns converts caller turns to messages, dropping other roles and blank content.
func FromTurns(turns []model.Turn) []*schema.Message {
	out := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(t.Role)) {
		case "user":
			out = append(out, schema.UserMessage(t.Content))
		case "assistant":
			out = append(out, schema.AssistantMessage(t.Content, nil))
		}
	}
	return out
}

func keepDialogue(messages []*schema.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		if msg == nil || msg.Content == "" {
			continue
		}
		if msg.Role == schema.User || msg.Role == schema.Assistant {
			out = append(out, msg)
		}
	}
	return out
}
