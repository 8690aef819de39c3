// Package memory holds per-thread conversational state: message history,
// the most recent search results, and learned preferences.
package memory

import (
	"time"

	"github.com/gifco-ai/restaurant-concierge/internal/model"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// Message is a single conversation turn.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SearchRecord summarizes one past search for the bounded history ring.
type SearchRecord struct {
	Query           string    `json:"query"`
	RestaurantCount int       `json:"restaurant_count"`
	Timestamp       time.Time `json:"timestamp"`
}

// Preferences are learned from user messages by keyword heuristics. They
// only ever grow; there is no un-learning.
type Preferences struct {
	PreferredCuisines []string `json:"preferred_cuisines,omitempty"`
	BudgetConscious   bool     `json:"budget_conscious,omitempty"`
}

// ThreadContext is everything remembered about one conversation thread.
// LastRestaurants is replaced wholesale on every new search.
type ThreadContext struct {
	ThreadID        string                 `json:"thread_id"`
	Messages        []Message              `json:"messages"`
	LastRestaurants []model.RestaurantInfo `json:"last_restaurants,omitempty"`
	LastQuery       string                 `json:"last_query,omitempty"`
	SearchHistory   []SearchRecord         `json:"search_history,omitempty"`
	Preferences     Preferences            `json:"preferences"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// NewThreadContext creates an empty context for a thread.
func NewThreadContext(threadID string) *ThreadContext {
	now := time.Now()
	return &ThreadContext{
		ThreadID:  threadID,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
