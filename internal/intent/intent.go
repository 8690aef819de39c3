// Package intent classifies free-text restaurant requests into structured
// commands using LLM function calling.
package intent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gifco-ai/restaurant-concierge/internal/model"
)

// Classifier turns user utterances into commands. Implementations are
// fail-safe by contract: Classify degrades to the help command,
// IsCollectionFollowUp degrades to false, and ExtractSearchTags degrades to
// an empty result. None of them surface classification failures to callers.
type Classifier interface {
	// Classify parses one utterance into a command. contextSnippet is an
	// optional slice of recent conversation used to disambiguate.
	Classify(ctx context.Context, utterance, contextSnippet string) *model.Command

	// IsCollectionFollowUp answers whether the utterance continues a
	// collection-creation suggestion, given the assistant's last message.
	IsCollectionFollowUp(ctx context.Context, utterance, lastAIMessage string) bool

	// ExtractSearchTags derives up to five search tags plus a place from a
	// free-text query.
	ExtractSearchTags(ctx context.Context, query string) (tags []string, place string)
}

// Function names the model may call during classification.
const (
	fnSearchRestaurants       = "search_restaurants"
	fnRecommendRestaurants    = "recommend_restaurants"
	fnCreateCollection        = "create_collection"
	fnCreateCollectionWithIDs = "create_collection_with_restaurants"
	fnGetInfo                 = "get_info"
)

type queryArgs struct {
	Query               string `json:"query"`
	Place               string `json:"place"`
	Cuisine             string `json:"cuisine"`
	PriceRange          string `json:"price_range"`
	DietaryRestrictions string `json:"dietary_restrictions"`
}

type collectionArgs struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	IsPublic      *bool    `json:"is_public"`
	Tags          []string `json:"tags"`
	AuthToken     string   `json:"auth_token"`
	RestaurantIDs []string `json:"restaurant_ids"`
}

// commandFromToolCall maps a function call returned by the model onto a
// command. Unknown function names and malformed arguments degrade to the
// help command, keeping classification fail-open.
func commandFromToolCall(name, arguments, originalRequest string) *model.Command {
	switch name {
	case fnSearchRestaurants, fnRecommendRestaurants:
		var args queryArgs
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return model.NewHelpCommand(originalRequest)
		}
		cmdType := model.CommandSearch
		if name == fnRecommendRestaurants {
			cmdType = model.CommandRecommendation
		}
		return &model.Command{
			Type:            cmdType,
			OriginalRequest: originalRequest,
			Search: &model.RestaurantQuery{
				Query:               args.Query,
				Place:               args.Place,
				Cuisine:             args.Cuisine,
				PriceRange:          args.PriceRange,
				DietaryRestrictions: args.DietaryRestrictions,
			},
		}

	case fnCreateCollection, fnCreateCollectionWithIDs:
		var args collectionArgs
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return model.NewHelpCommand(originalRequest)
		}
		isPublic := true
		if args.IsPublic != nil {
			isPublic = *args.IsPublic
		}
		return &model.Command{
			Type:            model.CommandCollection,
			OriginalRequest: originalRequest,
			Collection: &model.CollectionParams{
				Name:          args.Name,
				Description:   args.Description,
				IsPublic:      isPublic,
				Tags:          args.Tags,
				AuthToken:     args.AuthToken,
				RestaurantIDs: args.RestaurantIDs,
			},
		}

	case fnGetInfo:
		var args struct {
			Topic string `json:"topic"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil || args.Topic == "" {
			return model.NewHelpCommand(originalRequest)
		}
		return &model.Command{
			Type:            model.CommandInformational,
			OriginalRequest: originalRequest,
			Topic:           args.Topic,
		}

	default:
		return model.NewHelpCommand(originalRequest)
	}
}

// ExtractJSON pulls the first JSON object out of a model reply that may be
// wrapped in prose or markdown fences.
func ExtractJSON(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(content, "}")
	if end <= start {
		return ""
	}
	return content[start : end+1]
}
