// Package parser turns a classified command into an executed tool call
// against the restaurant API.
package parser

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gifco-ai/restaurant-concierge/internal/intent"
	"github.com/gifco-ai/restaurant-concierge/internal/model"
	"github.com/gifco-ai/restaurant-concierge/internal/restaurantapi"
	"github.com/gifco-ai/restaurant-concierge/pkg/logger"
)

const helpText = `I can help you find great restaurants! I can:

- Search for restaurants by location and cuisine
- Find popular dining spots
- Recommend places based on your preferences
- Create curated restaurant collections
- Help with specific food cravings like "best butter chicken"

Just ask me what you're looking for!`

// restaurantAPI is the slice of the API client the parser calls. Narrowed
// for test doubles.
type restaurantAPI interface {
	SearchByTags(ctx context.Context, tags []string, place string) (*restaurantapi.SearchResult, error)
	CreateCollection(ctx context.Context, name, description string, isPublic bool, tags []string, authToken string) (map[string]any, error)
	CreateCollectionWithRestaurants(ctx context.Context, name, description string, restaurantIDs []string, isPublic bool, tags []string, authToken string) (*restaurantapi.CollectionWithRestaurantsResult, error)
}

// Result is the outcome of parsing and executing one request. Exactly one
// of the payload fields is set, matching Command.Type; Err carries tool
// failures as a message rather than an error value so a failed tool call
// still returns the classified command alongside it.
type Result struct {
	Command     *model.Command
	Restaurants []model.RestaurantInfo
	InfoText    string
	Collection  any
	Err         string
}

// Failed reports whether tool execution produced an error.
func (r *Result) Failed() bool {
	return r.Err != ""
}

// Parser classifies a request and runs the resulting command against the
// restaurant API.
type Parser struct {
	classifier      intent.Classifier
	api             restaurantAPI
	defaultLocation string
	logger          *logger.Logger
}

// New creates a command parser.
func New(classifier intent.Classifier, api restaurantAPI, defaultLocation string, log *logger.Logger) *Parser {
	return &Parser{
		classifier:      classifier,
		api:             api,
		defaultLocation: defaultLocation,
		logger:          log,
	}
}

// ParseAndExecute classifies the request and executes the command. The
// returned Result always carries a command; tool failures land in
// Result.Err. authToken comes from the HTTP layer and is forwarded to
// collection operations.
func (p *Parser) ParseAndExecute(ctx context.Context, request, authToken, contextSnippet string) *Result {
	cmd := p.classifier.Classify(ctx, request, contextSnippet)

	p.logger.Info("executing command",
		zap.String("command_type", string(cmd.Type)),
	)

	switch cmd.Type {
	case model.CommandSearch, model.CommandRecommendation:
		return p.executeSearch(ctx, cmd)
	case model.CommandCollection:
		return p.executeCollection(ctx, cmd, authToken)
	default:
		return &Result{Command: cmd, InfoText: helpText}
	}
}

// executeSearch extracts search tags from the combined query text and runs
// the tag search. A failed tag extraction still searches, with the place
// alone.
func (p *Parser) executeSearch(ctx context.Context, cmd *model.Command) *Result {
	queryText := cmd.Search.Query
	if cmd.Search.Place != "" {
		queryText += " in " + cmd.Search.Place
	}

	tags, place := p.classifier.ExtractSearchTags(ctx, queryText)
	if place == "" {
		place = cmd.Search.Place
	}
	if place == "" {
		place = p.defaultLocation
	}

	result, err := p.api.SearchByTags(ctx, tags, place)
	if err != nil {
		p.logger.Warn("restaurant search failed", zap.Error(err))
		return &Result{Command: cmd, Err: fmt.Sprintf("restaurant search failed: %v", err)}
	}

	return &Result{Command: cmd, Restaurants: result.Restaurants}
}

func (p *Parser) executeCollection(ctx context.Context, cmd *model.Command, authToken string) *Result {
	params := cmd.Collection

	token := authToken
	if token == "" {
		token = params.AuthToken
	}
	if strings.TrimSpace(token) == "" {
		return &Result{Command: cmd, Err: "authorization token required for collection operations"}
	}

	if len(params.RestaurantIDs) > 0 {
		outcome, err := p.api.CreateCollectionWithRestaurants(ctx,
			params.Name, params.Description, params.RestaurantIDs, params.IsPublic, params.Tags, token)
		if err != nil {
			return &Result{Command: cmd, Err: fmt.Sprintf("failed to create collection: %v", err)}
		}
		return &Result{Command: cmd, Collection: outcome}
	}

	created, err := p.api.CreateCollection(ctx, params.Name, params.Description, params.IsPublic, params.Tags, token)
	if err != nil {
		return &Result{Command: cmd, Err: fmt.Sprintf("failed to create collection: %v", err)}
	}
	return &Result{Command: cmd, Collection: created}
}

// HelpText returns the canned informational response.
func HelpText() string {
	return helpText
}
