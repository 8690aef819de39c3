package restaurantapi

import (
	"strings"
	"unicode"
)

// DefaultPlace is used when the user gives no location at all.
const DefaultPlace = "New Delhi"

// placeAliases maps common spellings and former names to the canonical
// city strings the upstream API expects.
var placeAliases = map[string]string{
	"delhi":         "New Delhi",
	"new delhi":     "New Delhi",
	"mumbai":        "Mumbai",
	"bombay":        "Mumbai",
	"bangalore":     "Bangalore",
	"bengaluru":     "Bangalore",
	"kolkata":       "Kolkata",
	"calcutta":      "Kolkata",
	"chennai":       "Chennai",
	"madras":        "Chennai",
	"hyderabad":     "Hyderabad",
	"pune":          "Pune",
	"ahmedabad":     "Ahmedabad",
	"jaipur":        "Jaipur",
	"lucknow":       "Lucknow",
	"kanpur":        "Kanpur",
	"nagpur":        "Nagpur",
	"visakhapatnam": "Visakhapatnam",
	"indore":        "Indore",
	"thane":         "Thane",
	"bhopal":        "Bhopal",
	"patna":         "Patna",
	"vadodara":      "Vadodara",
	"ghaziabad":     "Ghaziabad",
	"ludhiana":      "Ludhiana",
	"agra":          "Agra",
	"nashik":        "Nashik",
}

// NormalizePlace maps free-text place names onto the canonical strings the
// upstream API uses. Empty input falls back to DefaultPlace; unknown places
// pass through title-cased. Total function, never errors.
func NormalizePlace(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultPlace
	}
	if canonical, ok := placeAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return titleCase(trimmed)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
