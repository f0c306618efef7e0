package orchestrator

import (
	"context"
	"os"
	"testing"

	"github.com/reai-platform/core/knowledge"
)

// inMemoryConversationStore is a deterministic test double for
// ConversationStore, avoiding a Redis dependency in engine-level tests.
type inMemoryConversationStore struct {
	states map[string]*ConversationState
}

func newInMemoryConversationStore() *inMemoryConversationStore {
	return &inMemoryConversationStore{states: make(map[string]*ConversationState)}
}

func (s *inMemoryConversationStore) Load(ctx context.Context, userID, conversationID string) (*ConversationState, error) {
	key := userID + ":" + conversationID
	if state, ok := s.states[key]; ok {
		copied := *state
		copied.History = append([]Message(nil), state.History...)
		copied.LastRetrieved = append([]string(nil), state.LastRetrieved...)
		return &copied, nil
	}
	return &ConversationState{UserID: userID, ConversationID: conversationID}, nil
}

func (s *inMemoryConversationStore) Save(ctx context.Context, state *ConversationState) error {
	key := state.UserID + ":" + state.ConversationID
	s.states[key] = state
	return nil
}

// stubHandler always returns a fixed HandlerResult, used to isolate engine
// stage wiring from the real HTTP handlers.
type stubHandler struct {
	result HandlerResult
	err    error
}

func (h *stubHandler) Handle(ctx context.Context, req HandlerRequest) (HandlerResult, error) {
	return h.result, h.err
}

func newTestEngine(t *testing.T, classifierLLM LLMClient, handler Handler) (*Engine, *inMemoryConversationStore) {
	t.Helper()
	store := newInMemoryConversationStore()
	classifier := NewIntentClassifier(classifierLLM)
	router := &Router{
		chat:   handler,
		search: handler,
		detail: handler,
		serviceFor: map[Intent]string{},
	}
	engine := NewEngine(Config{MaxQueryLength: 500, HistoryWindow: 10, LastRetrievedK: 10, PropertyKeywordThreshold: 0.3}, store, nil, classifier, router, nil)
	return engine, store
}

func TestOrchestrateRejectsEmptyQuery(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeLLM{text: "chat"}, &stubHandler{result: HandlerResult{Text: "ok"}})

	resp, chain := engine.Orchestrate(context.Background(), Request{UserID: "u1", Query: "   "})
	if resp.Confidence != 0 {
		t.Errorf("expected confidence 0 for empty query, got %f", resp.Confidence)
	}
	if len(chain.Thoughts) == 0 {
		t.Errorf("expected a reasoning chain entry even for rejected input")
	}
}

func TestOrchestrateReturnsClarificationForCriticalAmbiguity(t *testing.T) {
	engine, _ := newTestEngine(t, &fakeLLM{text: "chat"}, &stubHandler{result: HandlerResult{Text: "ok"}})

	resp, _ := engine.Orchestrate(context.Background(), Request{UserID: "u1", Query: "I want a nice place"})
	if !resp.NeedsClarification {
		t.Fatalf("expected needs_clarification for vague aesthetic term, got %+v", resp)
	}
	if resp.Confidence > 0.6 {
		t.Errorf("expected confidence <= 0.6, got %f", resp.Confidence)
	}
}

func TestOrchestrateRunsHandlerAndPersistsState(t *testing.T) {
	handler := &stubHandler{result: HandlerResult{Text: "Here are some listings", Sources: []string{"p1", "p2"}, Confidence: 0.8}}
	llm := &fakeLLM{text: "```json\n{\"intent\": \"search\", \"confidence\": 0.9, \"entities\": {\"bedrooms\": 2}}\n```"}
	engine, store := newTestEngine(t, llm, handler)

	resp, _ := engine.Orchestrate(context.Background(), Request{UserID: "u1", ConversationID: "c1", Query: "find a 2 bedroom apartment in district 7 under 3 billion"})
	if resp.Intent != IntentSearch {
		t.Fatalf("expected search intent, got %s", resp.Intent)
	}
	if resp.ResponseText != "Here are some listings" {
		t.Errorf("unexpected response text: %q", resp.ResponseText)
	}

	state, err := store.Load(context.Background(), "u1", "c1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.History) != 2 {
		t.Errorf("expected 2 persisted messages, got %d", len(state.History))
	}
	if len(state.LastRetrieved) != 2 || state.LastRetrieved[0] != "p1" {
		t.Errorf("expected last_retrieved = [p1 p2], got %+v", state.LastRetrieved)
	}
}

func TestOrchestrateAppliesKnowledgeExpansionFilters(t *testing.T) {
	kb, err := knowledge.Load(writeTestExpansionsFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var captured HandlerRequest
	handler := &capturingHandler{result: HandlerResult{Text: "ok", Confidence: 0.8}, captured: &captured}
	llm := &fakeLLM{text: "```json\n{\"intent\": \"search\", \"confidence\": 0.9}\n```"}

	store := newInMemoryConversationStore()
	classifier := NewIntentClassifier(llm)
	router := &Router{chat: handler, search: handler, detail: handler, serviceFor: map[Intent]string{}}
	engine := NewEngine(Config{MaxQueryLength: 500, HistoryWindow: 10, LastRetrievedK: 10}, store, kb, classifier, router, nil)

	engine.Orchestrate(context.Background(), Request{UserID: "u1", Query: "apartment near international school"})
	if captured.Filters["district"] != "district 2" {
		t.Errorf("expected knowledge-expansion filter district=district 2, got %+v", captured.Filters)
	}
}

type capturingHandler struct {
	result   HandlerResult
	captured *HandlerRequest
}

func (h *capturingHandler) Handle(ctx context.Context, req HandlerRequest) (HandlerResult, error) {
	*h.captured = req
	return h.result, nil
}

func writeTestExpansionsFile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/expansions.yaml"
	content := `
phrases:
  "international school":
    expanded_terms: ["ISHCMC"]
    suggested_filters:
      district: "district 2"
    rationale: "test"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
