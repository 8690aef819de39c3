// Package service orchestrates a conversational turn: memory, intent
// classification, tool execution, and reply generation.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gifco-ai/restaurant-concierge/internal/events"
	"github.com/gifco-ai/restaurant-concierge/internal/intent"
	"github.com/gifco-ai/restaurant-concierge/internal/llm"
	"github.com/gifco-ai/restaurant-concierge/internal/memory"
	"github.com/gifco-ai/restaurant-concierge/internal/model"
	"github.com/gifco-ai/restaurant-concierge/internal/parser"
	"github.com/gifco-ai/restaurant-concierge/internal/restaurantapi"
	"github.com/gifco-ai/restaurant-concierge/pkg/logger"
	"github.com/gifco-ai/restaurant-concierge/pkg/metrics"
)

const internalErrorMessage = "Sorry, I encountered an error processing your request. Please try again."

// commandParser is the parser surface the service drives. Narrowed for
// test doubles.
type commandParser interface {
	ParseAndExecute(ctx context.Context, request, authToken, contextSnippet string) *parser.Result
}

// collectionCreator is the API slice used by the collection-from-memory
// path, which bypasses the parser.
type collectionCreator interface {
	CreateCollectionWithRestaurants(ctx context.Context, name, description string, restaurantIDs []string, isPublic bool, tags []string, authToken string) (*restaurantapi.CollectionWithRestaurantsResult, error)
}

// Service processes conversational restaurant queries.
type Service struct {
	parser     commandParser
	classifier intent.Classifier
	llm        llm.Client
	memory     *memory.Manager
	api        collectionCreator
	events     *events.Publisher
	logger     *logger.Logger
}

// New creates the query service. events may be nil to disable publishing.
func New(p commandParser, classifier intent.Classifier, llmClient llm.Client, mem *memory.Manager, api collectionCreator, pub *events.Publisher, log *logger.Logger) *Service {
	return &Service{
		parser:     p,
		classifier: classifier,
		llm:        llmClient,
		memory:     mem,
		api:        api,
		events:     pub,
		logger:     log,
	}
}

// Query processes one conversational turn. It never returns an error: every
// failure mode is folded into the response so the thread always gets an
// assistant-side message.
func (s *Service) Query(ctx context.Context, req *model.QueryRequest, authToken string) *model.QueryResponse {
	start := time.Now()

	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	log := s.logger.With(zap.String("thread_id", threadID))
	log.Info("processing query", zap.String("query", req.Query), zap.String("location", req.Location))

	if err := s.memory.AddUserMessage(ctx, threadID, req.Query); err != nil {
		return s.internalFailure(ctx, req.Query, threadID, err, start)
	}

	var resp *model.QueryResponse
	if s.isConfirmedCollectionRequest(ctx, req.Query, threadID, authToken) {
		resp = s.createCollectionFromMemory(ctx, req.Query, threadID, authToken)
	} else {
		resp = s.executeCommand(ctx, req, threadID, authToken)
	}

	outcome := "ok"
	if !resp.Success {
		outcome = "error"
	}
	metrics.RecordQuery(string(resp.CommandType), outcome)

	s.events.PublishQueryCompleted(ctx, &events.QueryCompleted{
		ThreadID:        threadID,
		Query:           req.Query,
		CommandType:     string(resp.CommandType),
		Success:         resp.Success,
		RestaurantCount: resp.ResponseCount,
		DurationMS:      time.Since(start).Milliseconds(),
		Timestamp:       time.Now(),
	})

	return resp
}

// isConfirmedCollectionRequest gates the collection-from-memory path: auth
// token present, cheap text gate, then LLM confirmation, checked in cost
// order. Whether restaurants are actually stored is resolved inside the
// collection path, so a confirmed request against an empty memory gets an
// explicit error instead of falling through to the parser.
func (s *Service) isConfirmedCollectionRequest(ctx context.Context, query, threadID, authToken string) bool {
	if authToken == "" {
		return false
	}
	if !s.memory.IsCollectionRequest(query) && !isAffirmative(query) {
		return false
	}

	lastAI, err := s.memory.LastAIMessage(ctx, threadID)
	if err != nil {
		s.logger.Warn("could not load conversation context", zap.Error(err))
	}
	return s.classifier.IsCollectionFollowUp(ctx, query, lastAI)
}

func (s *Service) createCollectionFromMemory(ctx context.Context, query, threadID, authToken string) *model.QueryResponse {
	restaurants, lastQuery, err := s.memory.GetLastRestaurants(ctx, threadID)
	if err != nil {
		return s.internalFailure(ctx, query, threadID, err, time.Now())
	}

	if len(restaurants) == 0 {
		msg := "No recent restaurant search results available for collection creation."
		return s.failure(ctx, query, threadID, msg, "no stored restaurants", model.CommandCollection)
	}

	ids := make([]string, 0, len(restaurants))
	for _, r := range restaurants {
		ids = append(ids, r.ExtractID())
	}

	s.logger.Info("creating collection from memory",
		zap.String("thread_id", threadID),
		zap.Int("restaurant_count", len(ids)),
	)

	details := s.generateCollectionDetails(ctx, lastQuery, restaurants)

	result, err := s.api.CreateCollectionWithRestaurants(ctx,
		details.Name, details.Description, ids, true, details.Tags, authToken)
	if err != nil {
		msg := fmt.Sprintf("Failed to create collection: %v", err)
		return s.failure(ctx, query, threadID, msg, err.Error(), model.CommandCollection)
	}

	msg := fmt.Sprintf("Collection %q created successfully!\nAdded %d/%d restaurants to your collection.",
		details.Name, result.SuccessfullyAdded, result.TotalRestaurants)
	if len(result.FailedRestaurants) > 0 {
		msg += fmt.Sprintf("\n%d restaurants failed to add.", len(result.FailedRestaurants))
	}

	s.recordAIMessage(ctx, threadID, msg)

	return &model.QueryResponse{
		Success:          true,
		Message:          msg,
		Query:            query,
		ThreadID:         threadID,
		CommandType:      model.CommandCollection,
		CollectionResult: result,
		ResponseCount:    len(ids),
		Timestamp:        time.Now(),
	}
}

func (s *Service) executeCommand(ctx context.Context, req *model.QueryRequest, threadID, authToken string) *model.QueryResponse {
	snippet, err := s.memory.EnhancedContext(ctx, threadID)
	if err != nil {
		s.logger.Warn("could not build conversation context", zap.Error(err))
		snippet = ""
	}

	// Collection requests that reach the parser carry the stored search
	// results so the classifier can fill in restaurant ids.
	if s.memory.IsCollectionRequest(req.Query) {
		collCtx, err := s.memory.CollectionContext(ctx, threadID, authToken)
		if err != nil {
			s.logger.Warn("could not build collection context", zap.Error(err))
		} else {
			snippet += "\n\n" + collCtx
		}
	}

	result := s.parser.ParseAndExecute(ctx, req.Query, authToken, snippet)
	cmd := result.Command

	if result.Failed() {
		msg := "Error processing request: " + result.Err
		return s.failure(ctx, req.Query, threadID, msg, result.Err, cmd.Type)
	}

	var message string
	var restaurants []model.RestaurantInfo

	switch cmd.Type {
	case model.CommandSearch, model.CommandRecommendation:
		restaurants = result.Restaurants
		message = s.generateReply(ctx, req.Query, restaurants, req.Location)
		if len(restaurants) > 0 {
			if err := s.memory.UpdateSearchContext(ctx, threadID, restaurants, req.Query); err != nil {
				s.logger.Warn("failed to persist search context", zap.Error(err))
			}
		}

	case model.CommandCollection:
		message = collectionMessage(cmd, result.Collection)

	default:
		message = result.InfoText
	}

	s.recordAIMessage(ctx, threadID, message)

	return &model.QueryResponse{
		Success:          true,
		Message:          message,
		Query:            req.Query,
		ThreadID:         threadID,
		CommandType:      cmd.Type,
		Restaurants:      restaurants,
		ResponseCount:    len(restaurants),
		CollectionResult: result.Collection,
		Timestamp:        time.Now(),
	}
}

func collectionMessage(cmd *model.Command, outcome any) string {
	name := ""
	if cmd.Collection != nil {
		name = cmd.Collection.Name
	}

	if result, ok := outcome.(*restaurantapi.CollectionWithRestaurantsResult); ok {
		msg := fmt.Sprintf("Collection %q created successfully!\nAdded %d/%d restaurants to your collection.",
			name, result.SuccessfullyAdded, result.TotalRestaurants)
		if len(result.FailedRestaurants) > 0 {
			msg += fmt.Sprintf("\n%d restaurants failed to add.", len(result.FailedRestaurants))
		}
		return msg
	}

	return fmt.Sprintf("Collection %q created successfully!", name)
}

// failure builds a failed response after recording the message in memory,
// so the thread still has an assistant turn.
func (s *Service) failure(ctx context.Context, query, threadID, message, errText string, cmdType model.CommandType) *model.QueryResponse {
	s.recordAIMessage(ctx, threadID, message)

	return &model.QueryResponse{
		Success:     false,
		Message:     message,
		Query:       query,
		ThreadID:    threadID,
		CommandType: cmdType,
		Error:       errText,
		Timestamp:   time.Now(),
	}
}

func (s *Service) internalFailure(ctx context.Context, query, threadID string, err error, start time.Time) *model.QueryResponse {
	s.logger.Error("query processing failed",
		zap.String("thread_id", threadID),
		zap.Error(err),
	)

	s.recordAIMessage(ctx, threadID, internalErrorMessage)
	metrics.RecordQuery("unknown", "error")

	return &model.QueryResponse{
		Success:   false,
		Message:   internalErrorMessage,
		Query:     query,
		ThreadID:  threadID,
		Error:     err.Error(),
		Timestamp: time.Now(),
	}
}

func (s *Service) recordAIMessage(ctx context.Context, threadID, message string) {
	if err := s.memory.AddAIMessage(ctx, threadID, message); err != nil {
		s.logger.Warn("failed to record assistant message",
			zap.String("thread_id", threadID),
			zap.Error(err),
		)
	}
}

// isAffirmative matches short agreement replies like "yes" or "sure", which
// continue a collection suggestion without containing any collection
// keyword.
func isAffirmative(text string) bool {
	switch normalizeShort(text) {
	case "yes", "yeah", "yep", "sure", "ok", "okay", "yes please", "please do", "go ahead", "do it":
		return true
	}
	return false
}
