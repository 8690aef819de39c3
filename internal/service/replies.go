package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gifco-ai/restaurant-concierge/internal/intent"
	"github.com/gifco-ai/restaurant-concierge/internal/llm"
	"github.com/gifco-ai/restaurant-concierge/internal/model"
	"github.com/gifco-ai/restaurant-concierge/pkg/metrics"
)

const (
	replySystemPrompt = "You are a helpful restaurant assistant. Generate brief, friendly, and " +
		"engaging responses that proactively suggest collection creation."

	noResultsSystemPrompt = "You are a helpful restaurant assistant. Generate empathetic and " +
		"helpful responses when no restaurants are found."

	collectionDetailsSystemPrompt = "You are a helpful assistant that generates restaurant " +
		"collection details. Always respond with valid JSON only."
)

// collectionDetails is the generated name/description/tags triple for a
// collection created from memory.
type collectionDetails struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// generateCollectionDetails asks the model for a collection name,
// description, and tags based on the search that produced the stored
// restaurants. Any LLM or parse failure falls back to a timestamped
// generic triple.
func (s *Service) generateCollectionDetails(ctx context.Context, searchQuery string, restaurants []model.RestaurantInfo) collectionDetails {
	cuisines := map[string]bool{}
	locations := map[string]bool{}
	for _, r := range restaurants {
		if r.Cuisine != "" {
			cuisines[r.Cuisine] = true
		}
		if r.Location != "" {
			locations[r.Location] = true
		}
	}

	prompt := fmt.Sprintf(`Generate collection details for a restaurant collection based on this context:

Search Query: %s
Number of Restaurants: %d
Cuisines Found: %s
Locations: %s

Generate a JSON response with:
1. "name": A unique, descriptive collection name
2. "description": A detailed description of the collection
3. "tags": An array of 3-5 relevant tags

Requirements:
- Name should be catchy, descriptive, short and concise
- Description should mention the search context in one short sentence
- Tags should be relevant to the cuisine/location/search

Example format:
{
  "name": "Italian Spots (Delhi)",
  "description": "A curated collection of top Italian restaurants found during our search in Delhi.",
  "tags": ["italian", "delhi", "curated", "authentic", "dining"]
}`,
		searchQuery, len(restaurants), setOrDefault(cuisines, "Mixed"), setOrDefault(locations, "Various"))

	start := time.Now()
	resp, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Messages: []llm.ChatMessage{
			{Role: llm.RoleSystem, Content: collectionDetailsSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		s.logger.Warn("collection details generation failed, using fallback", zap.Error(err))
		metrics.RecordLLMCall("collection_details", "error", "", time.Since(start).Seconds(), 0, 0)
		return fallbackCollectionDetails(searchQuery)
	}
	metrics.RecordLLMCall("collection_details", "ok", resp.Model, time.Since(start).Seconds(),
		resp.TokensIn, resp.TokensOut)

	var details collectionDetails
	if err := json.Unmarshal([]byte(intent.ExtractJSON(resp.Content)), &details); err != nil ||
		details.Name == "" || details.Description == "" || len(details.Tags) == 0 {
		s.logger.Warn("collection details response unusable, using fallback")
		return fallbackCollectionDetails(searchQuery)
	}
	return details
}

func fallbackCollectionDetails(searchQuery string) collectionDetails {
	timestamp := time.Now().Format("20060102_1504")
	return collectionDetails{
		Name:        "Restaurant Collection - " + timestamp,
		Description: "A curated collection of restaurants from search: " + searchQuery,
		Tags:        []string{"curated", "restaurants", "search_results"},
	}
}

// generateReply produces the conversational message for search and
// recommendation results. LLM failures fall back to a fixed template so the
// turn still reads naturally.
func (s *Service) generateReply(ctx context.Context, query string, restaurants []model.RestaurantInfo, location string) string {
	var systemPrompt, prompt string

	if len(restaurants) == 0 {
		if location == "" {
			location = "not specified"
		}
		systemPrompt = noResultsSystemPrompt
		prompt = fmt.Sprintf(`Generate a helpful and friendly response when no restaurants were found for the user's query.

User Query: %s
Location: %s

The response should:
1. Acknowledge that no restaurants were found
2. Suggest alternative search options (different keywords, location, or cuisine type)
3. Keep it conversational, encouraging, and concise (2-3 sentences max)`, query, location)
	} else {
		systemPrompt = replySystemPrompt
		prompt = fmt.Sprintf(`Generate a friendly, conversational response about finding %d restaurants including %s.

The response should:
1. Briefly mention the search results (don't list all restaurants)
2. Proactively ask if the user wants to create a collection from these restaurants
3. Make it clear they can just say "yes" or "create collection"
4. Keep it enthusiastic and concise (2-3 sentences max)`, len(restaurants), namePreview(restaurants))
	}

	start := time.Now()
	resp, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Messages: []llm.ChatMessage{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil {
		s.logger.Warn("reply generation failed, using fallback", zap.Error(err))
		metrics.RecordLLMCall("generate_reply", "error", "", time.Since(start).Seconds(), 0, 0)
		return fallbackReply(query, restaurants)
	}
	metrics.RecordLLMCall("generate_reply", "ok", resp.Model, time.Since(start).Seconds(),
		resp.TokensIn, resp.TokensOut)

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return fallbackReply(query, restaurants)
	}
	return content
}

func fallbackReply(query string, restaurants []model.RestaurantInfo) string {
	if len(restaurants) == 0 {
		return fmt.Sprintf("I couldn't find any restaurants matching your search for %q. "+
			"You might want to try different keywords, a broader location, or another cuisine type. "+
			"I'm here to help you find the perfect place!", query)
	}
	return fmt.Sprintf("I found %d restaurants for you including %s. "+
		"Would you like me to create a collection from these restaurants? Just say 'yes' and I'll set one up!",
		len(restaurants), namePreview(restaurants))
}

// namePreview lists the first three restaurant names, with a count of the
// remainder.
func namePreview(restaurants []model.RestaurantInfo) string {
	names := make([]string, 0, 3)
	for i, r := range restaurants {
		if i >= 3 {
			break
		}
		names = append(names, r.Name)
	}
	preview := strings.Join(names, ", ")
	if len(restaurants) > 3 {
		preview += fmt.Sprintf(" and %d more", len(restaurants)-3)
	}
	return preview
}

func setOrDefault(set map[string]bool, fallback string) string {
	if len(set) == 0 {
		return fallback
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	return strings.Join(keys, ", ")
}

// normalizeShort lowercases and strips punctuation for matching short
// affirmative replies.
func normalizeShort(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return strings.TrimRight(text, ".!?")
}
