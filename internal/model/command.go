// Package model defines data structures for the restaurant concierge.
package model

// CommandType identifies the kind of intent parsed from a user request.
type CommandType string

const (
	CommandSearch         CommandType = "search"
	CommandRecommendation CommandType = "recommendation"
	CommandInformational  CommandType = "informational"
	CommandCollection     CommandType = "collection"
)

// RestaurantQuery holds the structured parameters of a search or
// recommendation request.
type RestaurantQuery struct {
	Query               string `json:"query"`
	Place               string `json:"place,omitempty"`
	Cuisine             string `json:"cuisine,omitempty"`
	PriceRange          string `json:"price_range,omitempty"`
	DietaryRestrictions string `json:"dietary_restrictions,omitempty"`
}

// CollectionParams holds the parameters of a collection-creation request.
// RestaurantIDs is non-empty only for create-with-restaurants requests.
type CollectionParams struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	IsPublic      bool     `json:"is_public"`
	Tags          []string `json:"tags,omitempty"`
	AuthToken     string   `json:"-"`
	RestaurantIDs []string `json:"restaurant_ids,omitempty"`
}

// Command is a tagged union of parsed user intents. Exactly one of the
// variant fields is populated, selected by Type. OriginalRequest retains
// the raw input for audit and fallback.
type Command struct {
	Type            CommandType       `json:"type"`
	OriginalRequest string            `json:"original_request"`
	Search          *RestaurantQuery  `json:"search,omitempty"`
	Topic           string            `json:"topic,omitempty"`
	Collection      *CollectionParams `json:"collection,omitempty"`
}

// NewHelpCommand returns the informational fallback used whenever intent
// classification cannot produce a usable result.
func NewHelpCommand(originalRequest string) *Command {
	return &Command{
		Type:            CommandInformational,
		OriginalRequest: originalRequest,
		Topic:           "help",
	}
}
