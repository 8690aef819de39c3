package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/gifco-ai/restaurant-concierge/internal/llm"
	"github.com/gifco-ai/restaurant-concierge/internal/model"
	"github.com/gifco-ai/restaurant-concierge/pkg/logger"
)

type stubChat struct {
	resp openai.ChatCompletionResponse
	err  error
}

func (s *stubChat) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return s.resp, s.err
}

type stubLLM struct {
	content string
	err     error
}

func (s *stubLLM) Complete(_ context.Context, _ *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content}, nil
}

func (s *stubLLM) Name() string     { return "stub" }
func (s *stubLLM) Models() []string { return nil }

func toolCallResponse(fn, args string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				ToolCalls: []openai.ToolCall{{
					Function: openai.FunctionCall{Name: fn, Arguments: args},
				}},
			},
		}},
	}
}

func newTestClassifier(chat chatCompleter, plain llm.Client) *OpenAIClassifier {
	return &OpenAIClassifier{
		chat:   chat,
		plain:  plain,
		model:  "test-model",
		logger: logger.NewNop(),
	}
}

func TestNewOpenAIClassifierRequiresKey(t *testing.T) {
	if _, err := NewOpenAIClassifier("", "", "", &stubLLM{}, logger.NewNop()); err == nil {
		t.Error("empty API key should be rejected")
	}
	if _, err := NewOpenAIClassifier("test-key", "", "", &stubLLM{}, logger.NewNop()); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
}

func TestClassifyMapsToolCall(t *testing.T) {
	c := newTestClassifier(&stubChat{
		resp: toolCallResponse("search_restaurants", `{"query":"pizza","place":"Mumbai"}`),
	}, &stubLLM{})

	cmd := c.Classify(context.Background(), "pizza in mumbai", "")
	if cmd.Type != model.CommandSearch {
		t.Errorf("type = %q, want search", cmd.Type)
	}
	if cmd.Search.Place != "Mumbai" {
		t.Errorf("place = %q", cmd.Search.Place)
	}
}

func TestClassifyFailsOpenOnTransportError(t *testing.T) {
	c := newTestClassifier(&stubChat{err: errors.New("connection refused")}, &stubLLM{})

	cmd := c.Classify(context.Background(), "anything", "")
	if cmd.Type != model.CommandInformational || cmd.Topic != "help" {
		t.Errorf("expected help fallback, got %+v", cmd)
	}
	if cmd.OriginalRequest != "anything" {
		t.Errorf("original request not retained")
	}
}

func TestClassifyFailsOpenWithoutToolCall(t *testing.T) {
	c := newTestClassifier(&stubChat{
		resp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Content: "I am just chatting"},
			}},
		},
	}, &stubLLM{})

	cmd := c.Classify(context.Background(), "hello", "")
	if cmd.Type != model.CommandInformational || cmd.Topic != "help" {
		t.Errorf("expected help fallback, got %+v", cmd)
	}
}

func TestIsCollectionFollowUp(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
		want    bool
	}{
		{"yes", "YES", nil, true},
		{"yes with whitespace", "  yes\n", nil, true},
		{"no", "NO", nil, false},
		{"rambling answer", "YES, I think this is a collection request", nil, false},
		{"transport error defaults to no", "", errors.New("timeout"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClassifier(&stubChat{}, &stubLLM{content: tt.content, err: tt.err})
			got := c.IsCollectionFollowUp(context.Background(), "yes", "Want a collection?")
			if got != tt.want {
				t.Errorf("IsCollectionFollowUp = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractSearchTags(t *testing.T) {
	c := newTestClassifier(&stubChat{}, &stubLLM{
		content: "```json\n{\"tags\":[\"pizza\",\"italian\"],\"place\":\"Mumbai\"}\n```",
	})

	tags, place := c.ExtractSearchTags(context.Background(), "pizza in mumbai")
	if len(tags) != 2 || tags[0] != "pizza" {
		t.Errorf("tags = %v", tags)
	}
	if place != "Mumbai" {
		t.Errorf("place = %q", place)
	}
}

func TestExtractSearchTagsCapsAtFive(t *testing.T) {
	c := newTestClassifier(&stubChat{}, &stubLLM{
		content: `{"tags":["a","b","c","d","e","f","g"],"place":""}`,
	})

	tags, _ := c.ExtractSearchTags(context.Background(), "everything")
	if len(tags) != 5 {
		t.Errorf("len(tags) = %d, want 5", len(tags))
	}
}

func TestExtractSearchTagsDegradesOnBadJSON(t *testing.T) {
	c := newTestClassifier(&stubChat{}, &stubLLM{content: "sorry, I can't do that"})

	tags, place := c.ExtractSearchTags(context.Background(), "pizza")
	if tags != nil || place != "" {
		t.Errorf("expected empty result, got %v %q", tags, place)
	}
}
