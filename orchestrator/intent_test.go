package orchestrator

import (
	"context"
	"testing"
)

type fakeIntentLLM struct {
	response string
	err      error
}

func (f *fakeIntentLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.response, f.err
}

func TestClassifyParsesFencedJSONResponse(t *testing.T) {
	llm := &fakeIntentLLM{response: "Sure, here you go:\n```json\n{\"intent\": \"search\", \"confidence\": 0.9, \"entities\": {\"bedrooms\": 2, \"location\": \"district 7\"}}\n```"}
	classifier := NewIntentClassifier(llm)

	result := classifier.Classify(context.Background(), "find a 2br in district 7", nil)
	if result.Intent != IntentSearch {
		t.Errorf("expected search intent, got %s", result.Intent)
	}
	if result.Entities.Bedrooms == nil || *result.Entities.Bedrooms != 2 {
		t.Errorf("expected bedrooms=2, got %+v", result.Entities)
	}
}

func TestClassifyFallsBackToKeywordRuleOnUnparseableResponse(t *testing.T) {
	llm := &fakeIntentLLM{response: "I'm not sure what you mean."}
	classifier := NewIntentClassifier(llm)

	result := classifier.Classify(context.Background(), "find me an apartment", nil)
	if result.Intent != IntentSearch {
		t.Errorf("expected fallback to search via keyword rule, got %s", result.Intent)
	}
}

func TestClassifyFallsBackToChatForGreetingOnLLMFailure(t *testing.T) {
	llm := &fakeIntentLLM{err: errTest("provider down")}
	classifier := NewIntentClassifier(llm)

	result := classifier.Classify(context.Background(), "hello there", nil)
	if result.Intent != IntentChat {
		t.Errorf("expected chat fallback for greeting, got %s", result.Intent)
	}
}

func TestClassifyFallsBackToUnknownForNeitherKeywordNorGreeting(t *testing.T) {
	llm := &fakeIntentLLM{err: errTest("provider down")}
	classifier := NewIntentClassifier(llm)

	result := classifier.Classify(context.Background(), "what is the weather", nil)
	if result.Intent != IntentUnknown {
		t.Errorf("expected unknown fallback, got %s", result.Intent)
	}
}

func TestClassifyRejectsUnknownIntentLabelFromLLM(t *testing.T) {
	llm := &fakeIntentLLM{response: "```json\n{\"intent\": \"not_a_real_intent\", \"confidence\": 0.9}\n```"}
	classifier := NewIntentClassifier(llm)

	result := classifier.Classify(context.Background(), "find me an apartment", nil)
	if result.Intent != IntentSearch {
		t.Errorf("expected keyword fallback when LLM intent label is invalid, got %s", result.Intent)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
