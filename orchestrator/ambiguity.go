package orchestrator

import "strings"

// propertyTypeWords are domain nouns whose presence establishes the user
// wants a specific kind of property (spec §4.5 stage 5).
var propertyTypeWords = []string{
	"apartment", "house", "villa", "condo", "studio", "townhouse", "land",
	"căn hộ", "nhà phố", "biệt thự", "đất", "chung cư",
}

// multiIntentConnectives signal two requests joined into one query.
var multiIntentConnectives = []string{
	" and also ", " but also ", " as well as ", " and then ",
	" và cũng ", " với lại ", " đồng thời ",
}

// vagueAestheticTerms is the closed list of ≥13 subjective modifiers that,
// unaccompanied by a specific criterion, leave a query uncheckable (spec
// §4.5 stage 5, amenity_ambiguous).
var vagueAestheticTerms = []string{
	"nice", "beautiful", "cozy", "modern", "luxurious", "spacious",
	"charming", "stylish", "elegant", "comfortable", "pretty", "lovely",
	"gorgeous", "đẹp", "sang trọng", "ấm cúng", "hiện đại",
}

// priceWords signal the user cares about price without necessarily giving
// a number.
var priceWords = []string{"price", "budget", "cost", "giá", "ngân sách"}

// locationWords signal the user cares about place without necessarily
// giving a district or city.
var locationWords = []string{"area", "neighborhood", "location", "khu vực", "gần"}

var knownDistrictOrCityWords = []string{
	"district", "quận", "city", "thành phố", "hcmc", "hanoi", "ho chi minh",
}

// searchIntentWords is a cheap pre-classification signal: without one of
// these, a bare "hello" or "thanks" should not be flagged
// property_type_missing just for lacking a property noun (spec §4.5 stage
// 5 only applies the rule when intent is otherwise unclear).
var searchIntentWords = []string{
	"find", "looking for", "want", "need", "show me", "search",
	"tìm", "cần", "muốn",
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// hasNumeric reports whether s contains at least one ASCII digit, used to
// distinguish "under 3 billion" (a numeric range) from a bare price word.
func hasNumeric(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// detectAmbiguity evaluates the five rules from spec §4.5 stage 5 and
// decides which detected items are critical enough to force clarification.
func detectAmbiguity(query string) AmbiguityResult {
	lower := " " + strings.ToLower(query) + " "
	var items []AmbiguityItem

	if containsAny(lower, searchIntentWords) && !containsAny(lower, propertyTypeWords) {
		items = append(items, AmbiguityItem{
			Type:     AmbiguityPropertyTypeMissing,
			Question: "What type of property are you looking for?",
			Options:  []string{"apartment", "house", "villa", "land"},
			Critical: true,
		})
	}

	if containsAny(lower, multiIntentConnectives) {
		items = append(items, AmbiguityItem{
			Type:     AmbiguityMultipleIntents,
			Question: "It looks like you're asking about more than one thing — which should I handle first?",
			Options:  []string{"the first request", "the second request", "both, one at a time"},
			Critical: true,
		})
	}

	if containsAny(lower, vagueAestheticTerms) && !hasNumeric(lower) {
		items = append(items, AmbiguityItem{
			Type:     AmbiguityAmenityAmbiguous,
			Question: "Can you tell me a specific feature you're looking for?",
			Options:  []string{"balcony", "pool", "parking", "natural light"},
			Critical: true,
		})
	}

	if containsAny(lower, priceWords) && !hasNumeric(lower) {
		items = append(items, AmbiguityItem{
			Type:     AmbiguityPriceRangeUnclear,
			Question: "What price range did you have in mind?",
			Options:  []string{"under 3 billion VND", "3-6 billion VND", "over 6 billion VND"},
			Critical: true,
		})
	}

	if containsAny(lower, locationWords) && !containsAny(lower, knownDistrictOrCityWords) {
		items = append(items, AmbiguityItem{
			Type:     AmbiguityLocationUnderspecified,
			Question: "Which district or city are you interested in?",
			Options:  []string{"District 1", "District 2", "District 7", "another area"},
			Critical: false,
		})
	}

	result := AmbiguityResult{Items: items}
	for _, item := range items {
		if item.Critical {
			result.NeedsClarification = true
			break
		}
	}
	return result
}
