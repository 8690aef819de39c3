package intent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gifco-ai/restaurant-concierge/internal/llm"
	"github.com/gifco-ai/restaurant-concierge/internal/model"
	"github.com/gifco-ai/restaurant-concierge/pkg/logger"
	"github.com/gifco-ai/restaurant-concierge/pkg/metrics"
)

// chatCompleter is the slice of the OpenAI client the classifier needs.
// Narrowed for test doubles.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClassifier classifies intents through a chat-completions endpoint
// with function calling, and runs its auxiliary yes/no and tag-extraction
// calls through the provider-agnostic llm.Client.
type OpenAIClassifier struct {
	chat   chatCompleter
	plain  llm.Client
	model  string
	logger *logger.Logger
}

// NewOpenAIClassifier builds a classifier. The API key is mandatory:
// without it every classification would silently degrade to the help
// fallback. baseURL may be empty for the official endpoint; model may be
// empty for gpt-4o.
func NewOpenAIClassifier(apiKey, baseURL, modelName string, plain llm.Client, log *logger.Logger) (*OpenAIClassifier, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required for intent classification")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if modelName == "" {
		modelName = openai.GPT4o
	}
	return &OpenAIClassifier{
		chat:   openai.NewClientWithConfig(cfg),
		plain:  plain,
		model:  modelName,
		logger: log,
	}, nil
}

// Classify parses an utterance into a command. Any failure along the way
// (transport, no tool call, unknown function, bad arguments) degrades to
// the help command; classification never errors out of this method.
func (c *OpenAIClassifier) Classify(ctx context.Context, utterance, contextSnippet string) *model.Command {
	start := time.Now()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: classifySystemPrompt},
	}
	if contextSnippet != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: "Recent conversation:\n" + contextSnippet,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: utterance,
	})

	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Tools:       classificationTools(),
		Temperature: 0,
	})
	if err != nil {
		c.logger.Warn("intent classification failed, falling back to help", zap.Error(err))
		metrics.RecordLLMCall("classify", "error", c.model, time.Since(start).Seconds(), 0, 0)
		return model.NewHelpCommand(utterance)
	}

	metrics.RecordLLMCall("classify", "ok", c.model, time.Since(start).Seconds(),
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		c.logger.Debug("model returned no tool call", zap.String("utterance", utterance))
		return model.NewHelpCommand(utterance)
	}

	call := resp.Choices[0].Message.ToolCalls[0]
	cmd := commandFromToolCall(call.Function.Name, call.Function.Arguments, utterance)

	c.logger.Info("classified intent",
		zap.String("function", call.Function.Name),
		zap.String("command_type", string(cmd.Type)),
	)

	return cmd
}

// IsCollectionFollowUp asks the model whether the utterance continues a
// collection-creation suggestion. Anything but a clear YES, including
// transport errors, is false: accidentally creating a collection is worse
// than missing one.
func (c *OpenAIClassifier) IsCollectionFollowUp(ctx context.Context, utterance, lastAIMessage string) bool {
	start := time.Now()

	resp, err := c.plain.Complete(ctx, &llm.CompletionRequest{
		Messages: []llm.ChatMessage{
			{Role: llm.RoleSystem, Content: collectionCheckSystemPrompt},
			{Role: llm.RoleUser, Content: buildCollectionCheckPrompt(utterance, lastAIMessage)},
		},
		MaxTokens:   10,
		Temperature: 0,
	})
	if err != nil {
		c.logger.Warn("collection follow-up check failed, assuming no", zap.Error(err))
		metrics.RecordLLMCall("collection_check", "error", "", time.Since(start).Seconds(), 0, 0)
		return false
	}

	metrics.RecordLLMCall("collection_check", "ok", resp.Model, time.Since(start).Seconds(),
		resp.TokensIn, resp.TokensOut)

	return strings.EqualFold(strings.TrimSpace(resp.Content), "YES")
}

// ExtractSearchTags derives search tags and a place from a query. JSON
// parse failures yield an empty result rather than an error.
func (c *OpenAIClassifier) ExtractSearchTags(ctx context.Context, query string) ([]string, string) {
	start := time.Now()

	resp, err := c.plain.Complete(ctx, &llm.CompletionRequest{
		Messages: []llm.ChatMessage{
			{Role: llm.RoleSystem, Content: extractTagsSystemPrompt},
			{Role: llm.RoleUser, Content: query},
		},
		MaxTokens:   200,
		Temperature: 0,
	})
	if err != nil {
		c.logger.Warn("tag extraction failed", zap.Error(err))
		metrics.RecordLLMCall("extract_tags", "error", "", time.Since(start).Seconds(), 0, 0)
		return nil, ""
	}

	metrics.RecordLLMCall("extract_tags", "ok", resp.Model, time.Since(start).Seconds(),
		resp.TokensIn, resp.TokensOut)

	var parsed struct {
		Tags  []string `json:"tags"`
		Place string   `json:"place"`
	}
	if err := json.Unmarshal([]byte(ExtractJSON(resp.Content)), &parsed); err != nil {
		c.logger.Warn("tag extraction returned unparseable JSON",
			zap.String("content", truncate(resp.Content, 200)),
		)
		return nil, ""
	}

	if len(parsed.Tags) > 5 {
		parsed.Tags = parsed.Tags[:5]
	}
	return parsed.Tags, parsed.Place
}
