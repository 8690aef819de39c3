// Package restaurantapi wraps the external restaurant search and
// collections HTTP API.
package restaurantapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gifco-ai/restaurant-concierge/internal/model"
	"github.com/gifco-ai/restaurant-concierge/pkg/logger"
	"github.com/gifco-ai/restaurant-concierge/pkg/metrics"
)

// Client calls the upstream restaurant API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a restaurant API client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// SearchResult is the parsed outcome of a tag search.
type SearchResult struct {
	Restaurants []model.RestaurantInfo
	Raw         map[string]any
}

// SearchByTags runs a tag-based restaurant search. Both tags and place are
// optional; empty values are left out of the request entirely.
func (c *Client) SearchByTags(ctx context.Context, tags []string, place string) (*SearchResult, error) {
	params := url.Values{}
	for _, tag := range tags {
		if tag != "" {
			params.Add("tags", tag)
		}
	}
	if place != "" {
		params.Set("place", NormalizePlace(place))
	}

	endpoint := c.baseURL + "/api/restaurants/search/tags"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("searching restaurants by tags",
		zap.Strings("tags", tags),
		zap.String("place", place),
	)

	raw, err := c.do(req, "search_by_tags")
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Restaurants: extractRestaurants(raw),
		Raw:         raw,
	}, nil
}

// CreateCollection creates a new empty collection.
func (c *Client) CreateCollection(ctx context.Context, name, description string, isPublic bool, tags []string, authToken string) (map[string]any, error) {
	if tags == nil {
		tags = []string{}
	}
	body, err := json.Marshal(map[string]any{
		"name":        name,
		"description": description,
		"isPublic":    isPublic,
		"tags":        tags,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/collections", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(authToken))

	c.logger.Info("creating collection", zap.String("name", name))

	return c.do(req, "create_collection")
}

// AddRestaurantToCollection adds one restaurant to an existing collection.
// Some deployments answer this endpoint with an empty or non-JSON 2xx body;
// that still counts as success.
func (c *Client) AddRestaurantToCollection(ctx context.Context, collectionID, restaurantID, authToken string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/api/collections/%s/add/restaurant/%s",
		c.baseURL, url.PathEscape(collectionID), url.PathEscape(restaurantID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", bearer(authToken))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamCall("add_restaurant", "error")
		return nil, err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordUpstreamCall("add_restaurant", "error")
		return nil, fmt.Errorf("add restaurant failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	metrics.RecordUpstreamCall("add_restaurant", "ok")

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return map[string]any{"success": true}, nil
	}
	return parsed, nil
}

// FailedRestaurant records a single restaurant that could not be added.
type FailedRestaurant struct {
	RestaurantID string `json:"restaurant_id"`
	Error        string `json:"error"`
}

// CollectionWithRestaurantsResult aggregates the outcome of creating a
// collection and adding restaurants to it. Success requires zero failed
// additions; partial progress is always preserved.
type CollectionWithRestaurantsResult struct {
	Collection        map[string]any     `json:"collection"`
	CollectionID      string             `json:"collection_id"`
	AddedRestaurants  []string           `json:"added_restaurants"`
	FailedRestaurants []FailedRestaurant `json:"failed_restaurants"`
	Success           bool               `json:"success"`
	TotalRestaurants  int                `json:"total_restaurants"`
	SuccessfullyAdded int                `json:"successfully_added"`
}

// CreateCollectionWithRestaurants creates a collection and then attempts to
// add every restaurant id, in order. A failed addition is recorded and the
// remaining ids are still attempted.
func (c *Client) CreateCollectionWithRestaurants(ctx context.Context, name, description string, restaurantIDs []string, isPublic bool, tags []string, authToken string) (*CollectionWithRestaurantsResult, error) {
	collection, err := c.CreateCollection(ctx, name, description, isPublic, tags, authToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	result := &CollectionWithRestaurantsResult{
		Collection:        collection,
		AddedRestaurants:  []string{},
		FailedRestaurants: []FailedRestaurant{},
		TotalRestaurants:  len(restaurantIDs),
	}

	collectionID, ok := ExtractCollectionID(collection)
	if !ok {
		for _, id := range restaurantIDs {
			result.FailedRestaurants = append(result.FailedRestaurants, FailedRestaurant{
				RestaurantID: id,
				Error:        "collection id not found in creation response",
			})
		}
		return result, nil
	}
	result.CollectionID = collectionID

	for _, id := range restaurantIDs {
		if _, err := c.AddRestaurantToCollection(ctx, collectionID, id, authToken); err != nil {
			c.logger.Warn("failed to add restaurant to collection",
				zap.String("collection_id", collectionID),
				zap.String("restaurant_id", id),
				zap.Error(err),
			)
			result.FailedRestaurants = append(result.FailedRestaurants, FailedRestaurant{
				RestaurantID: id,
				Error:        err.Error(),
			})
			continue
		}
		result.AddedRestaurants = append(result.AddedRestaurants, id)
	}

	result.SuccessfullyAdded = len(result.AddedRestaurants)
	result.Success = len(result.FailedRestaurants) == 0

	metrics.CollectionsCreated.Inc()

	return result, nil
}

// collection id extraction rules, in priority order. The upstream API has
// answered with every one of these shapes at some point.
var collectionIDPaths = [][]string{
	{"id"},
	{"_id"},
	{"collection", "_id"},
	{"collection", "id"},
}

// ExtractCollectionID probes the known response shapes for the new
// collection's identifier.
func ExtractCollectionID(resp map[string]any) (string, bool) {
	for _, path := range collectionIDPaths {
		node := any(resp)
		for _, key := range path {
			m, ok := node.(map[string]any)
			if !ok {
				node = nil
				break
			}
			node = m[key]
		}
		if id, ok := node.(string); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

func (c *Client) do(req *http.Request, operation string) (map[string]any, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamCall(operation, "error")
		return nil, fmt.Errorf("restaurant API request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstreamCall(operation, "error")
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordUpstreamCall(operation, "error")
		return nil, fmt.Errorf("restaurant API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		metrics.RecordUpstreamCall(operation, "error")
		return nil, fmt.Errorf("restaurant API returned invalid JSON: %w", err)
	}

	metrics.RecordUpstreamCall(operation, "ok")
	return parsed, nil
}

func bearer(token string) string {
	if strings.HasPrefix(token, "Bearer ") {
		return token
	}
	return "Bearer " + token
}

// extractRestaurants pulls the restaurant list out of a search response.
// Only entries with a name are kept; the upstream id lands on the explicit
// ID field.
func extractRestaurants(raw map[string]any) []model.RestaurantInfo {
	list, ok := raw["restaurants"].([]any)
	if !ok {
		return nil
	}

	restaurants := make([]model.RestaurantInfo, 0, len(list))
	for _, entry := range list {
		data, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name := stringField(data, "name")
		if name == "" {
			continue
		}
		restaurants = append(restaurants, model.RestaurantInfo{
			ID:          firstString(data, "_id", "id"),
			Name:        name,
			Cuisine:     stringField(data, "cuisine"),
			Location:    firstString(data, "location", "place", "address", "area"),
			Rating:      floatField(data, "rating"),
			PriceRange:  stringField(data, "price_range"),
			Description: stringField(data, "description"),
			Address:     stringField(data, "address"),
			Phone:       stringField(data, "phone"),
		})
	}
	if len(restaurants) == 0 {
		return nil
	}
	return restaurants
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func firstString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringField(data, key); s != "" {
			return s
		}
	}
	return ""
}

func floatField(data map[string]any, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%f", &f); err == nil {
			return f
		}
	}
	return 0
}
