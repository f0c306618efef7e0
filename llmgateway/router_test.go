package llmgateway

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/reai-platform/core/core"
)

type fakeProvider struct {
	name    string
	calls   int
	fail    error
	content string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, model string, req LLMRequest) (LLMResponse, error) {
	f.calls++
	if f.fail != nil {
		return LLMResponse{}, f.fail
	}
	return LLMResponse{Content: f.content, Provider: f.name, ModelActual: model}, nil
}

func (f *fakeProvider) Embed(ctx context.Context, model string, req EmbedRequest) (EmbedResponse, error) {
	f.calls++
	if f.fail != nil {
		return EmbedResponse{}, f.fail
	}
	return EmbedResponse{Data: []EmbedDatum{{Embedding: []float32{0.1}, Index: 0}}}, nil
}

func testRoutes() map[string]Route {
	return map[string]Route{
		"primary-chat": {
			LogicalTag: "primary-chat",
			Steps: []RouteStep{
				{ProviderName: "openai", Model: "gpt-4o-mini"},
				{ProviderName: "anthropic", Model: "claude-3-haiku"},
			},
		},
	}
}

func TestCompleteReturnsFirstSuccessfulProvider(t *testing.T) {
	openai := &fakeProvider{name: "openai", content: "hi"}
	anthropic := &fakeProvider{name: "anthropic", content: "fallback"}
	r := NewRouter(map[string]Provider{"openai": openai, "anthropic": anthropic}, testRoutes(), nil)

	resp, err := r.Complete(context.Background(), LLMRequest{Model: "primary-chat"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "hi" || resp.Provider != "openai" {
		t.Errorf("expected primary provider to serve the request, got %+v", resp)
	}
	if anthropic.calls != 0 {
		t.Errorf("fallback should not be called when primary succeeds, got %d calls", anthropic.calls)
	}
}

func TestCompleteFallsBackOnBadRequestWithoutRetry(t *testing.T) {
	openai := &fakeProvider{name: "openai", fail: fmt.Errorf("%w: malformed prompt", core.ErrBadRequest)}
	anthropic := &fakeProvider{name: "anthropic", content: "fallback"}
	r := NewRouter(map[string]Provider{"openai": openai, "anthropic": anthropic}, testRoutes(), nil)

	resp, err := r.Complete(context.Background(), LLMRequest{Model: "primary-chat"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Provider != "anthropic" {
		t.Errorf("expected fallback to serve the request, got %+v", resp)
	}
	if openai.calls != 1 {
		t.Errorf("non-retryable error should abort after a single attempt, got %d calls", openai.calls)
	}
}

func TestCompleteFailsWhenAllRoutesExhausted(t *testing.T) {
	fail := fmt.Errorf("%w: malformed prompt", core.ErrBadRequest)
	openai := &fakeProvider{name: "openai", fail: fail}
	anthropic := &fakeProvider{name: "anthropic", fail: fail}
	r := NewRouter(map[string]Provider{"openai": openai, "anthropic": anthropic}, testRoutes(), nil)

	_, err := r.Complete(context.Background(), LLMRequest{Model: "primary-chat"})
	if !errors.Is(err, core.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable when all routes fail, got %v", err)
	}
}

func TestCompleteRejectsUnknownLogicalModel(t *testing.T) {
	r := NewRouter(map[string]Provider{}, testRoutes(), nil)
	_, err := r.Complete(context.Background(), LLMRequest{Model: "does-not-exist"})
	if !errors.Is(err, core.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for unknown model, got %v", err)
	}
}

func TestEmbedUsesResolvedRoute(t *testing.T) {
	routes := map[string]Route{
		"primary-embed": {
			LogicalTag: "primary-embed",
			Steps:      []RouteStep{{ProviderName: "openai", Model: "text-embedding-ada-002"}},
		},
	}
	openai := &fakeProvider{name: "openai"}
	r := NewRouter(map[string]Provider{"openai": openai}, routes, nil)

	resp, err := r.Embed(context.Background(), EmbedRequest{Model: "primary-embed", Input: []string{"hello"}})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Errorf("expected one embedding datum, got %d", len(resp.Data))
	}
}

func TestIsRetryableClassifiesSpecErrorKinds(t *testing.T) {
	cases := []struct {
		err       error
		retryable bool
	}{
		{fmt.Errorf("%w: x", core.ErrBadRequest), false},
		{fmt.Errorf("%w: x", core.ErrRateLimited), true},
		{fmt.Errorf("%w: x", core.ErrProviderUnavailable), true},
		{errors.New("dial tcp: connection refused"), true},
	}
	for _, c := range cases {
		if got := isRetryable(c.err); got != c.retryable {
			t.Errorf("isRetryable(%v) = %v, want %v", c.err, got, c.retryable)
		}
	}
}
