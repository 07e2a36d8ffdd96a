package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/fredgpt/server/internal/agent/model"
	errx "github.com/fredgpt/server/internal/core/error"
	logx "github.com/fredgpt/server/pkg/logger"
)

// DefaultMaxMessages caps a session at the last 20 exchanges.
const DefaultMaxMessages = 40

// storedMessage is the session wire format. Only dialogue is persisted;
// tool calls and tool results stay inside the run that produced them.
type storedMessage struct {
	Role    schema.RoleType `json:"role"`
	Content string          `json:"content"`
	At      time.Time       `json:"at"`
}

// RedisConversationRepository keeps session dialogue in a capped Redis list
// per conversation. Every write refreshes the TTL.
type RedisConversationRepository struct {
	rdb         redis.Cmdable
	ttl         time.Duration
	maxMessages int64
	now         func() time.Time
}

type Option func(*RedisConversationRepository)

// WithMaxMessages caps the stored list; n <= 0 keeps everything.
func WithMaxMessages(n int) Option {
	return func(r *RedisConversationRepository) { r.maxMessages = int64(n) }
}

func NewRedisConversationRepository(rdb redis.Cmdable, ttl time.Duration, opts ...Option) *RedisConversationRepository {
	r := &RedisConversationRepository{rdb: rdb, ttl: ttl, maxMessages: DefaultMaxMessages, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisConversationRepository) sessionKey(conversationID string) string {
	return fmt.Sprintf("fredgpt:session:%s", conversationID)
}

// Append pushes messages in one transaction, trims the list to the cap and
// refreshes the TTL.
func (r *RedisConversationRepository) Append(ctx context.Context, conversationID string, messages ...*schema.Message) error {
	if len(messages) == 0 {
		return nil
	}

	rows := make([]any, 0, len(messages))
	for _, m := range messages {
		if m == nil {
			continue
		}
		b, err := json.Marshal(storedMessage{Role: m.Role, Content: m.Content, At: r.now().UTC()})
		if err != nil {
			logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to marshal message")
			return fmt.Errorf("marshal message: %w", err)
		}
		rows = append(rows, b)
	}
	if len(rows) == 0 {
		return nil
	}

	key := r.sessionKey(conversationID)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, rows...)
		if r.maxMessages > 0 {
			pipe.LTrim(ctx, key, -r.maxMessages, -1)
		}
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to append session messages")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) LoadHistory(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	key := r.sessionKey(conversationID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logx.Error().Err(err).Str("key", key).Msg("failed to load session from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]*schema.Message, 0, len(rows))
	for i, s := range rows {
		var m storedMessage
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Warn().Err(err).Str("conversation_id", conversationID).Int("index", i).Msg("skipping unreadable session entry")
			continue
		}
		msgs = append(msgs, &schema.Message{Role: m.Role, Content: m.Content})
	}
	return &model.ConversationHistory{ConversationID: conversationID, Messages: msgs}, nil
}

func (r *RedisConversationRepository) ClearHistory(ctx context.Context, conversationID string) error {
	key := r.sessionKey(conversationID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) GetMessageCount(ctx context.Context, conversationID string) (int, error) {
	n, err := r.rdb.LLen(ctx, r.sessionKey(conversationID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, errx.WrapRedis(err)
	}
	return int(n), nil
}

var _ model.ConversationRepository = (*RedisConversationRepository)(nil)
