package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newRetrievalTestServer(t *testing.T, properties map[string]retrievalDocument, searchResults []retrievalDocument) (*httptest.Server, *RetrievalClient) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/properties/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/properties/"):]
		doc, ok := properties[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(doc)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(retrievalSearchResponse{Results: searchResults})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, NewRetrievalClient(srv.URL, srv.Client())
}

func TestPropertyDetailHandlerByIDMode(t *testing.T) {
	_, client := newRetrievalTestServer(t, map[string]retrievalDocument{
		"p42": {ID: "p42", Title: "Sunny Villa"},
	}, nil)
	handler := NewPropertyDetailHandler(client, 0.3)

	result, err := handler.Handle(context.Background(), HandlerRequest{Query: "tell me about property p42"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Text != "Sunny Villa" {
		t.Errorf("expected Sunny Villa, got %q", result.Text)
	}
	if len(result.Components) != 1 || result.Components[0].Type != "property-inspector" {
		t.Errorf("expected a property-inspector component, got %+v", result.Components)
	}
}

func TestPropertyDetailHandlerByKeywordModeAboveThreshold(t *testing.T) {
	_, client := newRetrievalTestServer(t, nil, []retrievalDocument{
		{ID: "p1", Title: "Riverside Apartment", Score: 0.8},
	})
	handler := NewPropertyDetailHandler(client, 0.3)

	result, err := handler.Handle(context.Background(), HandlerRequest{Query: "the riverside apartment"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Text != "Riverside Apartment" {
		t.Errorf("expected Riverside Apartment, got %q", result.Text)
	}
}

func TestPropertyDetailHandlerByKeywordModeBelowThresholdAsksToRestate(t *testing.T) {
	_, client := newRetrievalTestServer(t, nil, []retrievalDocument{
		{ID: "p1", Title: "Riverside Apartment", Score: 0.1},
	})
	handler := NewPropertyDetailHandler(client, 0.3)

	result, err := handler.Handle(context.Background(), HandlerRequest{Query: "that place"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Confidence >= 0.5 {
		t.Errorf("expected a low-confidence restate prompt, got %+v", result)
	}
}

func TestPropertyDetailHandlerByPositionModeNumeric(t *testing.T) {
	_, client := newRetrievalTestServer(t, map[string]retrievalDocument{
		"p2": {ID: "p2", Title: "Second Listing"},
	}, nil)
	handler := NewPropertyDetailHandler(client, 0.3)
	state := &ConversationState{LastRetrieved: []string{"p1", "p2", "p3"}}

	result, err := handler.Handle(context.Background(), HandlerRequest{Query: "tell me about number 2", State: state})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Text != "Second Listing" {
		t.Errorf("expected Second Listing, got %q", result.Text)
	}
}

func TestPropertyDetailHandlerByPositionModeOrdinalWord(t *testing.T) {
	_, client := newRetrievalTestServer(t, map[string]retrievalDocument{
		"p2": {ID: "p2", Title: "Second Listing"},
	}, nil)
	handler := NewPropertyDetailHandler(client, 0.3)
	state := &ConversationState{LastRetrieved: []string{"p1", "p2", "p3"}}

	result, err := handler.Handle(context.Background(), HandlerRequest{Query: "the second one please", State: state})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Text != "Second Listing" {
		t.Errorf("expected Second Listing, got %q", result.Text)
	}
}

func TestPropertyDetailHandlerByPositionModeOutOfRangeAsksToRestate(t *testing.T) {
	_, client := newRetrievalTestServer(t, nil, nil)
	handler := NewPropertyDetailHandler(client, 0.3)
	state := &ConversationState{LastRetrieved: []string{"p1"}}

	result, err := handler.Handle(context.Background(), HandlerRequest{Query: "the fifth one", State: state})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Confidence >= 0.5 {
		t.Errorf("expected low-confidence restate prompt for out-of-range position, got %+v", result)
	}
}

func TestPropertyDetailHandlerByPositionModeWithNoRecentRetrievalAsksToRestate(t *testing.T) {
	_, client := newRetrievalTestServer(t, nil, nil)
	handler := NewPropertyDetailHandler(client, 0.3)

	result, err := handler.Handle(context.Background(), HandlerRequest{Query: "the second one", State: &ConversationState{}})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Confidence >= 0.5 {
		t.Errorf("expected low-confidence restate prompt with no last_retrieved, got %+v", result)
	}
}
