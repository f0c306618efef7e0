// Package retrieval implements the Retrieval Gateway (C3): a thin façade
// over a hybrid vector+keyword search engine, fusing both result lists
// with Reciprocal Rank Fusion (spec §4.3). The vector/BM25 engines
// themselves are explicitly out of scope (spec Non-goals); this package
// implements the fusion, filtering and façade contract around
// interfaces a real engine would satisfy.
package retrieval

// Filters is the recognized constraint set from spec §4.3.
type Filters struct {
	ListingType  string   `json:"listing_type,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
	City         string   `json:"city,omitempty"`
	District     string   `json:"district,omitempty"`
	PriceGTE     *float64 `json:"price_gte,omitempty"`
	PriceLTE     *float64 `json:"price_lte,omitempty"`
	AreaGTE      *float64 `json:"area_gte,omitempty"`
	AreaLTE      *float64 `json:"area_lte,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"`
	Features     []string `json:"features,omitempty"`
}

// RetrievedDocument is one fused search result.
type RetrievedDocument struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Score       float64                `json:"score"`
	Source      string                 `json:"source"` // "vector", "keyword" or "fused"
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
}

// SearchRequest is POST /search's body (spec §6).
type SearchRequest struct {
	Query   string  `json:"query"`
	Filters Filters `json:"filters"`
	Limit   int     `json:"limit"`
}

// SearchResponse is POST /search's response (spec §6).
type SearchResponse struct {
	Results         []RetrievedDocument `json:"results"`
	Total           int                 `json:"total"`
	ExecutionTimeMs int64               `json:"execution_time_ms"`
}

// PropertyDocument is the full property record GET /properties/{id}
// returns; it is the source of truth the Orchestrator's
// PropertyDetailHandler reads from (spec §6).
type PropertyDocument struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title"`
	ListingType string                `json:"listing_type"`
	PropertyType string               `json:"property_type"`
	City       string                 `json:"city"`
	District   string                 `json:"district"`
	Price      float64                `json:"price"`
	Area       float64                `json:"area"`
	Bedrooms   int                    `json:"bedrooms"`
	Bathrooms  int                    `json:"bathrooms"`
	Features   []string               `json:"features"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// matches applies spec §4.3's filter contract (applied before
// fusion, on both vector and keyword candidate lists).
func (f Filters) matches(p PropertyDocument) bool {
	if f.ListingType != "" && f.ListingType != p.ListingType {
		return false
	}
	if f.PropertyType != "" && f.PropertyType != p.PropertyType {
		return false
	}
	if f.City != "" && f.City != p.City {
		return false
	}
	if f.District != "" && f.District != p.District {
		return false
	}
	if f.PriceGTE != nil && p.Price < *f.PriceGTE {
		return false
	}
	if f.PriceLTE != nil && p.Price > *f.PriceLTE {
		return false
	}
	if f.AreaGTE != nil && p.Area < *f.AreaGTE {
		return false
	}
	if f.AreaLTE != nil && p.Area > *f.AreaLTE {
		return false
	}
	if f.Bedrooms != nil && p.Bedrooms != *f.Bedrooms {
		return false
	}
	if f.Bathrooms != nil && p.Bathrooms != *f.Bathrooms {
		return false
	}
	for _, want := range f.Features {
		if !containsFeature(p.Features, want) {
			return false
		}
	}
	return true
}

func containsFeature(have []string, want string) bool {
	for _, f := range have {
		if f == want {
			return true
		}
	}
	return false
}
