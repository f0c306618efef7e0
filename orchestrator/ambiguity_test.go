package orchestrator

import "testing"

func TestDetectAmbiguityFlagsVagueAestheticTermWithoutCriterion(t *testing.T) {
	result := detectAmbiguity("I want a nice apartment")
	if !result.NeedsClarification {
		t.Fatalf("expected needs_clarification for vague aesthetic term, got %+v", result)
	}
	found := false
	for _, item := range result.Items {
		if item.Type == AmbiguityAmenityAmbiguous {
			found = true
		}
	}
	if !found {
		t.Errorf("expected amenity_ambiguous item, got %+v", result.Items)
	}
}

func TestDetectAmbiguityAcceptsAestheticTermWithNumericCriterion(t *testing.T) {
	result := detectAmbiguity("a nice apartment with 2 bedrooms")
	for _, item := range result.Items {
		if item.Type == AmbiguityAmenityAmbiguous {
			t.Errorf("did not expect amenity_ambiguous once a numeric criterion is present: %+v", result.Items)
		}
	}
}

func TestDetectAmbiguityFlagsPriceWordWithoutNumber(t *testing.T) {
	result := detectAmbiguity("apartment within my budget")
	if !result.NeedsClarification {
		t.Fatalf("expected needs_clarification, got %+v", result)
	}
}

func TestDetectAmbiguityAcceptsPriceWordWithNumber(t *testing.T) {
	result := detectAmbiguity("apartment under 3 billion VND")
	for _, item := range result.Items {
		if item.Type == AmbiguityPriceRangeUnclear {
			t.Errorf("did not expect price_range_unclear with a numeric range: %+v", result.Items)
		}
	}
}

func TestDetectAmbiguityFlagsMultipleIntents(t *testing.T) {
	result := detectAmbiguity("find me an apartment and also tell me about legal fees")
	if !result.NeedsClarification {
		t.Fatalf("expected needs_clarification for multiple intents, got %+v", result)
	}
}

func TestDetectAmbiguityFlagsLocationUnderspecifiedAsNonCritical(t *testing.T) {
	result := detectAmbiguity("apartment in a nice area")
	var item *AmbiguityItem
	for i := range result.Items {
		if result.Items[i].Type == AmbiguityLocationUnderspecified {
			item = &result.Items[i]
		}
	}
	if item == nil {
		t.Fatalf("expected location_underspecified item, got %+v", result.Items)
	}
	if item.Critical {
		t.Errorf("location_underspecified should not be critical")
	}
}

func TestDetectAmbiguityEveryItemHasAtLeastTwoOptions(t *testing.T) {
	result := detectAmbiguity("find me a nice place within budget")
	for _, item := range result.Items {
		if len(item.Options) < 2 {
			t.Errorf("item %s has fewer than 2 options: %+v", item.Type, item)
		}
	}
}

func TestDetectAmbiguityGreetingWithoutSearchIntentIsNotFlagged(t *testing.T) {
	result := detectAmbiguity("hello, thanks for your help")
	for _, item := range result.Items {
		if item.Type == AmbiguityPropertyTypeMissing {
			t.Errorf("a bare greeting should not trigger property_type_missing: %+v", result.Items)
		}
	}
}

func TestDetectAmbiguityWellSpecifiedQueryHasNoCriticalItems(t *testing.T) {
	result := detectAmbiguity("find a 2 bedroom apartment in district 7 under 3 billion VND")
	if result.NeedsClarification {
		t.Errorf("expected no clarification needed for a well-specified query, got %+v", result.Items)
	}
}
