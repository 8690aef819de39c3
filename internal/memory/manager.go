package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gifco-ai/restaurant-concierge/internal/model"
	"github.com/gifco-ai/restaurant-concierge/pkg/logger"
)

const (
	maxMessagesPerThread = 50
	maxSearchHistory     = 10
	summaryContentLimit  = 100
)

// Cuisine and budget keywords scanned on every user message. Learning is
// one-directional; nothing ever removes a preference.
var (
	knownCuisines  = []string{"italian", "chinese", "indian", "mexican", "japanese"}
	budgetKeywords = []string{"cheap", "budget", "affordable"}

	collectionKeywords = []string{
		"create collection", "make collection", "save collection",
		"add to collection", "create a list", "make a list",
		"save these", "add these", "collection",
	}
)

// Manager wraps a Store with the conversational semantics: message caps,
// preference learning, the search-history ring, and prompt-context building.
type Manager struct {
	store  Store
	logger *logger.Logger
}

// NewManager creates a memory manager on top of a store.
func NewManager(store Store, log *logger.Logger) *Manager {
	return &Manager{store: store, logger: log}
}

// AddUserMessage appends a human message and scans it for preferences.
func (m *Manager) AddUserMessage(ctx context.Context, threadID, content string) error {
	tc, err := m.store.Load(ctx, threadID)
	if err != nil {
		return err
	}

	appendMessage(tc, RoleHuman, content)
	m.learnPreferences(tc, content)

	return m.store.Save(ctx, tc)
}

// AddAIMessage appends an assistant message.
func (m *Manager) AddAIMessage(ctx context.Context, threadID, content string) error {
	tc, err := m.store.Load(ctx, threadID)
	if err != nil {
		return err
	}

	appendMessage(tc, RoleAI, content)

	return m.store.Save(ctx, tc)
}

func appendMessage(tc *ThreadContext, role Role, content string) {
	tc.Messages = append(tc.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	if len(tc.Messages) > maxMessagesPerThread {
		tc.Messages = tc.Messages[len(tc.Messages)-maxMessagesPerThread:]
	}
	tc.UpdatedAt = time.Now()
}

func (m *Manager) learnPreferences(tc *ThreadContext, message string) {
	lower := strings.ToLower(message)

	for _, cuisine := range knownCuisines {
		if !strings.Contains(lower, cuisine) {
			continue
		}
		if containsString(tc.Preferences.PreferredCuisines, cuisine) {
			continue
		}
		tc.Preferences.PreferredCuisines = append(tc.Preferences.PreferredCuisines, cuisine)
		m.logger.Debug("learned cuisine preference",
			zap.String("thread_id", tc.ThreadID),
			zap.String("cuisine", cuisine),
		)
	}

	for _, word := range budgetKeywords {
		if strings.Contains(lower, word) {
			tc.Preferences.BudgetConscious = true
			break
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// GetLastRestaurants returns the cached results of the most recent search
// along with the query that produced them.
func (m *Manager) GetLastRestaurants(ctx context.Context, threadID string) ([]model.RestaurantInfo, string, error) {
	tc, err := m.store.Load(ctx, threadID)
	if err != nil {
		return nil, "", err
	}
	return tc.LastRestaurants, tc.LastQuery, nil
}

// UpdateSearchContext replaces the cached restaurant list wholesale and
// appends a record to the bounded search-history ring.
func (m *Manager) UpdateSearchContext(ctx context.Context, threadID string, restaurants []model.RestaurantInfo, query string) error {
	tc, err := m.store.Load(ctx, threadID)
	if err != nil {
		return err
	}

	tc.LastRestaurants = restaurants
	tc.LastQuery = query
	tc.SearchHistory = append(tc.SearchHistory, SearchRecord{
		Query:           query,
		RestaurantCount: len(restaurants),
		Timestamp:       time.Now(),
	})
	if len(tc.SearchHistory) > maxSearchHistory {
		tc.SearchHistory = tc.SearchHistory[len(tc.SearchHistory)-maxSearchHistory:]
	}
	tc.UpdatedAt = time.Now()

	m.logger.Info("updated search context",
		zap.String("thread_id", threadID),
		zap.Int("restaurant_count", len(restaurants)),
	)

	return m.store.Save(ctx, tc)
}

// ConversationSummary renders the last maxMessages turns as "Human:" and
// "Assistant:" lines, truncating long messages.
func (m *Manager) ConversationSummary(ctx context.Context, threadID string, maxMessages int) (string, error) {
	tc, err := m.store.Load(ctx, threadID)
	if err != nil {
		return "", err
	}

	if len(tc.Messages) == 0 {
		return "No previous conversation.", nil
	}

	recent := tc.Messages
	if len(recent) > maxMessages {
		recent = recent[len(recent)-maxMessages:]
	}

	lines := make([]string, 0, len(recent))
	for _, msg := range recent {
		role := "Assistant"
		if msg.Role == RoleHuman {
			role = "Human"
		}
		content := msg.Content
		if len(content) > summaryContentLimit {
			content = content[:summaryContentLimit] + "..."
		}
		lines = append(lines, role+": "+content)
	}

	return strings.Join(lines, "\n"), nil
}

// LastAIMessage returns the content of the most recent assistant message,
// or empty if there is none.
func (m *Manager) LastAIMessage(ctx context.Context, threadID string) (string, error) {
	tc, err := m.store.Load(ctx, threadID)
	if err != nil {
		return "", err
	}
	for i := len(tc.Messages) - 1; i >= 0; i-- {
		if tc.Messages[i].Role == RoleAI {
			return tc.Messages[i].Content, nil
		}
	}
	return "", nil
}

// IsCollectionRequest is a cheap substring gate run before the LLM-based
// follow-up check. The bare "collection" keyword makes it deliberately loose;
// the LLM check behind it is the precise one.
func (m *Manager) IsCollectionRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range collectionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// EnhancedContext builds a short context string for classification prompts:
// a conversation summary plus a note about the previous search, if any.
func (m *Manager) EnhancedContext(ctx context.Context, threadID string) (string, error) {
	summary, err := m.ConversationSummary(ctx, threadID, 10)
	if err != nil {
		return "", err
	}

	tc, err := m.store.Load(ctx, threadID)
	if err != nil {
		return "", err
	}

	var parts []string
	if summary != "No previous conversation." {
		parts = append(parts, "Recent Conversation:\n"+summary)
	}
	if len(tc.LastRestaurants) > 0 {
		parts = append(parts,
			"\nPrevious Restaurant Search:",
			"Query: "+tc.LastQuery,
			fmt.Sprintf("Found %d restaurants", len(tc.LastRestaurants)),
		)
	}

	if len(parts) == 0 {
		return "No previous context available.", nil
	}
	return strings.Join(parts, "\n"), nil
}

// CollectionContext builds the prompt block that instructs the model to
// create a collection from the thread's last search results. Restaurant ids
// are recovered via RestaurantInfo.ExtractID.
func (m *Manager) CollectionContext(ctx context.Context, threadID, authToken string) (string, error) {
	tc, err := m.store.Load(ctx, threadID)
	if err != nil {
		return "", err
	}

	if len(tc.LastRestaurants) == 0 {
		return "No recent restaurant search results available for collection creation.", nil
	}

	ids := make([]string, 0, len(tc.LastRestaurants))
	for _, r := range tc.LastRestaurants {
		ids = append(ids, fmt.Sprintf("%q", r.ExtractID()))
	}

	var details []string
	cuisines := map[string]bool{}
	locations := map[string]bool{}
	for i, r := range tc.LastRestaurants {
		if i >= 10 {
			break
		}
		line := fmt.Sprintf("%d. %s", i+1, r.Name)
		if r.Cuisine != "" {
			line += " - " + r.Cuisine
			cuisines[r.Cuisine] = true
		}
		if r.Location != "" {
			line += " in " + r.Location
			locations[r.Location] = true
		}
		details = append(details, line)
	}

	query := tc.LastQuery
	if query == "" {
		query = "restaurant search"
	}
	timestamp := time.Now().Format("20060102_1504")

	return fmt.Sprintf(`COLLECTION CREATION CONTEXT:

Previous Search Query: %s
Available Restaurants: %d restaurants found
Cuisines Found: %s
Locations: %s

Restaurant IDs for Collection:
[%s]

Restaurant Details:
%s

User Auth Token: %s

Instructions:
- Use the create_collection_with_restaurants tool
- Generate a UNIQUE collection name based on the search context; include the timestamp %s for uniqueness
- Include ALL restaurant IDs listed above
- Set is_public to true unless specified otherwise
- Add relevant tags like ["user_created", "restaurant_search"]`,
		query,
		len(tc.LastRestaurants),
		joinSet(cuisines, "Mixed"),
		joinSet(locations, "Various"),
		strings.Join(ids, ", "),
		strings.Join(details, "\n"),
		authToken,
		timestamp,
	), nil
}

func joinSet(set map[string]bool, fallback string) string {
	if len(set) == 0 {
		return fallback
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	return strings.Join(keys, ", ")
}
