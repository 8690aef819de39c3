package memory

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/gifco-ai/restaurant-concierge/internal/model"
	"github.com/gifco-ai/restaurant-concierge/pkg/logger"
)

func newTestManager() *Manager {
	return NewManager(NewInMemoryStore(), logger.NewNop())
}

func TestPreferenceLearningIdempotent(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := m.AddUserMessage(ctx, "t1", "I love Italian food"); err != nil {
			t.Fatal(err)
		}
	}

	tc, err := m.store.Load(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got := tc.Preferences.PreferredCuisines; len(got) != 1 || got[0] != "italian" {
		t.Errorf("preferred cuisines = %v, want [italian]", got)
	}
}

func TestPreferenceLearningBudget(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	if err := m.AddUserMessage(ctx, "t1", "somewhere cheap for chinese and mexican"); err != nil {
		t.Fatal(err)
	}

	tc, _ := m.store.Load(ctx, "t1")
	if !tc.Preferences.BudgetConscious {
		t.Error("budget keyword should set budget_conscious")
	}
	if len(tc.Preferences.PreferredCuisines) != 2 {
		t.Errorf("cuisines = %v, want chinese and mexican", tc.Preferences.PreferredCuisines)
	}
}

func TestMessageCap(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		if err := m.AddUserMessage(ctx, "t1", fmt.Sprintf("message %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	tc, _ := m.store.Load(ctx, "t1")
	if len(tc.Messages) != maxMessagesPerThread {
		t.Errorf("len(messages) = %d, want %d", len(tc.Messages), maxMessagesPerThread)
	}
	if tc.Messages[len(tc.Messages)-1].Content != "message 59" {
		t.Error("cap should drop the oldest messages, not the newest")
	}
}

func TestSearchHistoryRing(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	restaurants := []model.RestaurantInfo{{Name: "A"}}
	for i := 0; i < 15; i++ {
		if err := m.UpdateSearchContext(ctx, "t1", restaurants, fmt.Sprintf("query %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	tc, _ := m.store.Load(ctx, "t1")
	if len(tc.SearchHistory) != maxSearchHistory {
		t.Errorf("len(search history) = %d, want %d", len(tc.SearchHistory), maxSearchHistory)
	}
	if tc.SearchHistory[len(tc.SearchHistory)-1].Query != "query 14" {
		t.Error("ring should keep the newest entries")
	}
}

func TestUpdateSearchContextReplacesWholesale(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	first := []model.RestaurantInfo{{Name: "A"}, {Name: "B"}}
	second := []model.RestaurantInfo{{Name: "C"}}

	m.UpdateSearchContext(ctx, "t1", first, "first")
	m.UpdateSearchContext(ctx, "t1", second, "second")

	got, query, err := m.GetLastRestaurants(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "C" {
		t.Errorf("last restaurants = %v, want wholesale replacement", got)
	}
	if query != "second" {
		t.Errorf("last query = %q", query)
	}
}

func TestThreadIsolation(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	m.AddUserMessage(ctx, "t1", "I love Italian food")
	m.UpdateSearchContext(ctx, "t1", []model.RestaurantInfo{{Name: "A"}}, "pasta")

	got, _, _ := m.GetLastRestaurants(ctx, "t2")
	if len(got) != 0 {
		t.Errorf("thread t2 should be empty, got %v", got)
	}

	tc, _ := m.store.Load(ctx, "t2")
	if len(tc.Messages) != 0 || len(tc.Preferences.PreferredCuisines) != 0 {
		t.Errorf("thread t2 leaked state: %+v", tc)
	}
}

func TestConversationSummary(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	summary, err := m.ConversationSummary(ctx, "empty", 5)
	if err != nil {
		t.Fatal(err)
	}
	if summary != "No previous conversation." {
		t.Errorf("empty thread summary = %q", summary)
	}

	m.AddUserMessage(ctx, "t1", "find pizza")
	m.AddAIMessage(ctx, "t1", strings.Repeat("x", 150))

	summary, _ = m.ConversationSummary(ctx, "t1", 5)
	lines := strings.Split(summary, "\n")
	if len(lines) != 2 {
		t.Fatalf("summary lines = %d, want 2:\n%s", len(lines), summary)
	}
	if lines[0] != "Human: find pizza" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Assistant: ") || !strings.HasSuffix(lines[1], "...") {
		t.Errorf("long messages should be truncated with ellipsis: %q", lines[1])
	}
	if len(lines[1]) != len("Assistant: ")+summaryContentLimit+3 {
		t.Errorf("truncation length off: %d", len(lines[1]))
	}
}

func TestLastAIMessage(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	got, err := m.LastAIMessage(ctx, "t1")
	if err != nil || got != "" {
		t.Errorf("empty thread: got %q, %v", got, err)
	}

	m.AddUserMessage(ctx, "t1", "hi")
	m.AddAIMessage(ctx, "t1", "hello")
	m.AddUserMessage(ctx, "t1", "find pizza")

	got, _ = m.LastAIMessage(ctx, "t1")
	if got != "hello" {
		t.Errorf("last AI message = %q, want hello", got)
	}
}

func TestIsCollectionRequest(t *testing.T) {
	m := newTestManager()

	yes := []string{
		"create a collection",
		"make a collection from these",
		"save these restaurants",
		"CREATE COLLECTION now",
		"add these to my favorites",
		"collection of restaurants",
		"make a list of the best ones",
	}
	no := []string{
		"what's the weather like?",
		"find me pizza",
		"yes",
	}

	for _, s := range yes {
		if !m.IsCollectionRequest(s) {
			t.Errorf("IsCollectionRequest(%q) = false, want true", s)
		}
	}
	for _, s := range no {
		if m.IsCollectionRequest(s) {
			t.Errorf("IsCollectionRequest(%q) = true, want false", s)
		}
	}
}

func TestCollectionContext(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	got, err := m.CollectionContext(ctx, "t1", "tok")
	if err != nil {
		t.Fatal(err)
	}
	if got != "No recent restaurant search results available for collection creation." {
		t.Errorf("empty thread context = %q", got)
	}

	m.UpdateSearchContext(ctx, "t1", []model.RestaurantInfo{
		{ID: "r1", Name: "Bukhara", Cuisine: "Indian", Location: "New Delhi"},
		{Name: "Nameless Cafe"},
	}, "best kebabs")

	got, err = m.CollectionContext(ctx, "t1", "tok")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"r1"`, `"nameless_cafe"`, "best kebabs", "Bukhara - Indian in New Delhi", "create_collection_with_restaurants"} {
		if !strings.Contains(got, want) {
			t.Errorf("collection context missing %q:\n%s", want, got)
		}
	}
}

func TestEnhancedContext(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	got, err := m.EnhancedContext(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "No previous context available." {
		t.Errorf("empty thread context = %q", got)
	}

	m.AddUserMessage(ctx, "t1", "find pizza")
	m.UpdateSearchContext(ctx, "t1", []model.RestaurantInfo{{Name: "A"}, {Name: "B"}}, "pizza")

	got, _ = m.EnhancedContext(ctx, "t1")
	if !strings.Contains(got, "Recent Conversation:") || !strings.Contains(got, "Found 2 restaurants") {
		t.Errorf("enhanced context incomplete:\n%s", got)
	}
}
