package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gifco-ai/restaurant-concierge/internal/model"
	"github.com/gifco-ai/restaurant-concierge/internal/restaurantapi"
	"github.com/gifco-ai/restaurant-concierge/pkg/logger"
)

type stubClassifier struct {
	cmd   *model.Command
	tags  []string
	place string
}

func (s *stubClassifier) Classify(_ context.Context, utterance, _ string) *model.Command {
	if s.cmd != nil {
		return s.cmd
	}
	return model.NewHelpCommand(utterance)
}

func (s *stubClassifier) IsCollectionFollowUp(_ context.Context, _, _ string) bool {
	return false
}

func (s *stubClassifier) ExtractSearchTags(_ context.Context, _ string) ([]string, string) {
	return s.tags, s.place
}

type stubAPI struct {
	searchTags    []string
	searchPlace   string
	searchResult  *restaurantapi.SearchResult
	searchErr     error
	createdName   string
	createErr     error
	withIDsResult *restaurantapi.CollectionWithRestaurantsResult
}

func (s *stubAPI) SearchByTags(_ context.Context, tags []string, place string) (*restaurantapi.SearchResult, error) {
	s.searchTags = tags
	s.searchPlace = place
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.searchResult, nil
}

func (s *stubAPI) CreateCollection(_ context.Context, name, _ string, _ bool, _ []string, _ string) (map[string]any, error) {
	s.createdName = name
	if s.createErr != nil {
		return nil, s.createErr
	}
	return map[string]any{"id": "c1"}, nil
}

func (s *stubAPI) CreateCollectionWithRestaurants(_ context.Context, name, _ string, ids []string, _ bool, _ []string, _ string) (*restaurantapi.CollectionWithRestaurantsResult, error) {
	s.createdName = name
	if s.withIDsResult != nil {
		return s.withIDsResult, nil
	}
	return &restaurantapi.CollectionWithRestaurantsResult{
		CollectionID:      "c1",
		AddedRestaurants:  ids,
		FailedRestaurants: []restaurantapi.FailedRestaurant{},
		Success:           true,
		TotalRestaurants:  len(ids),
		SuccessfullyAdded: len(ids),
	}, nil
}

func searchCommand(query, place string) *model.Command {
	return &model.Command{
		Type:            model.CommandSearch,
		OriginalRequest: query,
		Search:          &model.RestaurantQuery{Query: query, Place: place},
	}
}

func TestParseAndExecuteSearch(t *testing.T) {
	api := &stubAPI{searchResult: &restaurantapi.SearchResult{
		Restaurants: []model.RestaurantInfo{{Name: "Bukhara"}},
	}}
	p := New(&stubClassifier{
		cmd:   searchCommand("best kebabs", "delhi"),
		tags:  []string{"kebab"},
		place: "New Delhi",
	}, api, "New Delhi", logger.NewNop())

	result := p.ParseAndExecute(context.Background(), "best kebabs in delhi", "", "")
	if result.Failed() {
		t.Fatalf("unexpected error: %s", result.Err)
	}
	if len(result.Restaurants) != 1 {
		t.Errorf("restaurants = %v", result.Restaurants)
	}
	if api.searchPlace != "New Delhi" {
		t.Errorf("place passed to API = %q", api.searchPlace)
	}
	if len(api.searchTags) != 1 || api.searchTags[0] != "kebab" {
		t.Errorf("tags passed to API = %v", api.searchTags)
	}
}

func TestParseAndExecuteSearchPlaceFallback(t *testing.T) {
	tests := []struct {
		name           string
		extractedPlace string
		commandPlace   string
		want           string
	}{
		{"extracted place wins", "Mumbai", "delhi", "Mumbai"},
		{"command place next", "", "delhi", "delhi"},
		{"default last", "", "", "New Delhi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &stubAPI{searchResult: &restaurantapi.SearchResult{}}
			p := New(&stubClassifier{
				cmd:   searchCommand("pizza", tt.commandPlace),
				place: tt.extractedPlace,
			}, api, "New Delhi", logger.NewNop())

			p.ParseAndExecute(context.Background(), "pizza", "", "")
			if api.searchPlace != tt.want {
				t.Errorf("place = %q, want %q", api.searchPlace, tt.want)
			}
		})
	}
}

func TestParseAndExecuteSearchError(t *testing.T) {
	api := &stubAPI{searchErr: errors.New("upstream down")}
	p := New(&stubClassifier{cmd: searchCommand("pizza", "")}, api, "New Delhi", logger.NewNop())

	result := p.ParseAndExecute(context.Background(), "pizza", "", "")
	if !result.Failed() {
		t.Fatal("expected failure")
	}
	if result.Command == nil || result.Command.Type != model.CommandSearch {
		t.Error("failed result should still carry the classified command")
	}
}

func TestParseAndExecuteInformational(t *testing.T) {
	p := New(&stubClassifier{}, &stubAPI{}, "New Delhi", logger.NewNop())

	result := p.ParseAndExecute(context.Background(), "what can you do?", "", "")
	if result.Failed() {
		t.Fatalf("unexpected error: %s", result.Err)
	}
	if !strings.Contains(result.InfoText, "I can help you find great restaurants") {
		t.Errorf("unexpected help text: %q", result.InfoText)
	}
}

func TestParseAndExecuteCollectionRequiresToken(t *testing.T) {
	cmd := &model.Command{
		Type:       model.CommandCollection,
		Collection: &model.CollectionParams{Name: "Favs", Description: "d", IsPublic: true},
	}
	api := &stubAPI{}
	p := New(&stubClassifier{cmd: cmd}, api, "New Delhi", logger.NewNop())

	result := p.ParseAndExecute(context.Background(), "create a collection", "", "")
	if !result.Failed() {
		t.Fatal("expected token error")
	}
	if !strings.Contains(result.Err, "authorization token") {
		t.Errorf("err = %q", result.Err)
	}
	if api.createdName != "" {
		t.Error("no API call should be made without a token")
	}
}

func TestParseAndExecuteCollectionTokenFromCommand(t *testing.T) {
	cmd := &model.Command{
		Type:       model.CommandCollection,
		Collection: &model.CollectionParams{Name: "Favs", Description: "d", IsPublic: true, AuthToken: "cmd-token"},
	}
	api := &stubAPI{}
	p := New(&stubClassifier{cmd: cmd}, api, "New Delhi", logger.NewNop())

	result := p.ParseAndExecute(context.Background(), "create a collection", "", "")
	if result.Failed() {
		t.Fatalf("unexpected error: %s", result.Err)
	}
	if api.createdName != "Favs" {
		t.Error("create-empty path should call CreateCollection")
	}
}

func TestParseAndExecuteCollectionWithRestaurants(t *testing.T) {
	cmd := &model.Command{
		Type: model.CommandCollection,
		Collection: &model.CollectionParams{
			Name: "Found Gems", Description: "d", IsPublic: true,
			RestaurantIDs: []string{"r1", "r2"},
		},
	}
	p := New(&stubClassifier{cmd: cmd}, &stubAPI{}, "New Delhi", logger.NewNop())

	result := p.ParseAndExecute(context.Background(), "save these", "header-token", "")
	if result.Failed() {
		t.Fatalf("unexpected error: %s", result.Err)
	}
	outcome, ok := result.Collection.(*restaurantapi.CollectionWithRestaurantsResult)
	if !ok {
		t.Fatalf("collection payload type %T", result.Collection)
	}
	if outcome.SuccessfullyAdded != 2 {
		t.Errorf("added = %d", outcome.SuccessfullyAdded)
	}
}
