package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Message is one turn of conversation history (spec §4.5 stage 3).
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationState is the persisted per-conversation context: a bounded
// history window plus the last set of retrieved document IDs, so follow-up
// turns ("tell me more about the second one") can resolve references
// without re-retrieving (spec §4.5 stage 3 and stage 9 PropertyDetailHandler).
type ConversationState struct {
	UserID        string    `json:"user_id"`
	ConversationID string   `json:"conversation_id"`
	History       []Message `json:"history"`
	LastRetrieved []string  `json:"last_retrieved"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ConversationStore persists and retrieves ConversationState.
type ConversationStore interface {
	Load(ctx context.Context, userID, conversationID string) (*ConversationState, error)
	Save(ctx context.Context, state *ConversationState) error
}

// RedisConversationStore is grounded on the teacher's
// orchestration/workflow_state.go RedisStateStore: a JSON-marshaled,
// key-prefixed, TTL-bound record per conversation.
type RedisConversationStore struct {
	client        *redis.Client
	ttl           time.Duration
	historyWindow int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRedisConversationStore dials addr and returns a store whose keys
// expire after ttl and whose Save trims history to historyWindow entries.
func NewRedisConversationStore(addr string, ttl time.Duration, historyWindow int) *RedisConversationStore {
	return newRedisConversationStore(redis.NewClient(&redis.Options{Addr: addr}), ttl, historyWindow)
}

// newRedisConversationStore builds a store around an already-constructed
// client, so tests can inject a miniredis-backed client without dialing a
// real address (mirrors the teacher's hitl_checkpoint_store_test.go setup).
func newRedisConversationStore(client *redis.Client, ttl time.Duration, historyWindow int) *RedisConversationStore {
	return &RedisConversationStore{
		client:        client,
		ttl:           ttl,
		historyWindow: historyWindow,
		locks:         make(map[string]*sync.Mutex),
	}
}

func conversationKey(userID, conversationID string) string {
	return fmt.Sprintf("orchestrator:conversation:%s:%s", userID, conversationID)
}

// lockFor returns a per-conversation mutex so concurrent turns on the same
// conversation serialize (spec §4.5 stage 3: "per-conversation mutex").
func (s *RedisConversationStore) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Load fetches the conversation, returning a fresh empty state if none
// exists yet (a conversation's first turn is not an error).
func (s *RedisConversationStore) Load(ctx context.Context, userID, conversationID string) (*ConversationState, error) {
	key := conversationKey(userID, conversationID)
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return &ConversationState{UserID: userID, ConversationID: conversationID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("conversation store: load %s: %w", key, err)
	}
	var state ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("conversation store: decode %s: %w", key, err)
	}
	return &state, nil
}

// Save persists state, trimming history to the configured window and
// refreshing the TTL.
func (s *RedisConversationStore) Save(ctx context.Context, state *ConversationState) error {
	key := conversationKey(state.UserID, state.ConversationID)
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	if s.historyWindow > 0 && len(state.History) > s.historyWindow {
		state.History = state.History[len(state.History)-s.historyWindow:]
	}
	state.UpdatedAt = time.Now()

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("conversation store: encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("conversation store: save %s: %w", key, err)
	}
	return nil
}
