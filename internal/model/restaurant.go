package model

import "strings"

const legacyIDPrefix = "ID:"

// RestaurantInfo describes a single restaurant returned by the upstream
// search API. ID carries the upstream identifier when the API provides
// one; older payloads smuggled it inside Description as "ID:<id>|<text>",
// which ExtractID still recognizes.
type RestaurantInfo struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Cuisine     string  `json:"cuisine,omitempty"`
	Location    string  `json:"location,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	PriceRange  string  `json:"price_range,omitempty"`
	Description string  `json:"description,omitempty"`
	Address     string  `json:"address,omitempty"`
	Phone       string  `json:"phone,omitempty"`
}

// ExtractID returns the best available identifier for collection-membership
// calls: the explicit ID, then the legacy "ID:<id>|..." description prefix,
// then a synthetic id derived from the name.
func (r RestaurantInfo) ExtractID() string {
	if r.ID != "" {
		return r.ID
	}
	if id, ok := parseLegacyID(r.Description); ok {
		return id
	}
	return strings.ToLower(strings.ReplaceAll(r.Name, " ", "_"))
}

func parseLegacyID(description string) (string, bool) {
	if !strings.HasPrefix(description, legacyIDPrefix) {
		return "", false
	}
	head, _, _ := strings.Cut(description, "|")
	id := strings.TrimSpace(strings.TrimPrefix(head, legacyIDPrefix))
	if id == "" {
		return "", false
	}
	return id, true
}
