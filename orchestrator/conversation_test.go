package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func setupConversationTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func newTestConversationStore(client *redis.Client, historyWindow int) *RedisConversationStore {
	return newRedisConversationStore(client, time.Hour, historyWindow)
}

func TestLoadReturnsFreshStateWhenConversationUnseen(t *testing.T) {
	_, client := setupConversationTestRedis(t)
	store := newTestConversationStore(client, 10)

	state, err := store.Load(context.Background(), "user-1", "conv-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.History) != 0 || len(state.LastRetrieved) != 0 {
		t.Errorf("expected empty fresh state, got %+v", state)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	_, client := setupConversationTestRedis(t)
	store := newTestConversationStore(client, 10)
	ctx := context.Background()

	state, _ := store.Load(ctx, "user-1", "conv-1")
	state.History = append(state.History, Message{Role: "user", Content: "find me a 2br in district 2"})
	state.LastRetrieved = []string{"p1", "p2"}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := store.Load(ctx, "user-1", "conv-1")
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if len(reloaded.History) != 1 || reloaded.History[0].Content != "find me a 2br in district 2" {
		t.Errorf("history did not round-trip: %+v", reloaded.History)
	}
	if len(reloaded.LastRetrieved) != 2 || reloaded.LastRetrieved[1] != "p2" {
		t.Errorf("last_retrieved did not round-trip: %+v", reloaded.LastRetrieved)
	}
}

func TestSaveTrimsHistoryToWindow(t *testing.T) {
	_, client := setupConversationTestRedis(t)
	store := newTestConversationStore(client, 3)
	ctx := context.Background()

	state, _ := store.Load(ctx, "user-1", "conv-1")
	for i := 0; i < 5; i++ {
		state.History = append(state.History, Message{Role: "user", Content: "turn"})
	}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, _ := store.Load(ctx, "user-1", "conv-1")
	if len(reloaded.History) != 3 {
		t.Errorf("expected history trimmed to 3, got %d", len(reloaded.History))
	}
}

func TestLastRetrievedIsOverwrittenNotAppended(t *testing.T) {
	_, client := setupConversationTestRedis(t)
	store := newTestConversationStore(client, 10)
	ctx := context.Background()

	state, _ := store.Load(ctx, "user-1", "conv-1")
	state.LastRetrieved = []string{"p1", "p2"}
	store.Save(ctx, state)

	reloaded, _ := store.Load(ctx, "user-1", "conv-1")
	reloaded.LastRetrieved = []string{"p3"}
	store.Save(ctx, reloaded)

	final, _ := store.Load(ctx, "user-1", "conv-1")
	if len(final.LastRetrieved) != 1 || final.LastRetrieved[0] != "p3" {
		t.Errorf("expected last_retrieved overwritten to [p3], got %+v", final.LastRetrieved)
	}
}

func TestDifferentConversationsAreIsolated(t *testing.T) {
	_, client := setupConversationTestRedis(t)
	store := newTestConversationStore(client, 10)
	ctx := context.Background()

	a, _ := store.Load(ctx, "user-1", "conv-a")
	a.LastRetrieved = []string{"p1"}
	store.Save(ctx, a)

	b, err := store.Load(ctx, "user-1", "conv-b")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(b.LastRetrieved) != 0 {
		t.Errorf("expected conv-b isolated from conv-a, got %+v", b.LastRetrieved)
	}
}
