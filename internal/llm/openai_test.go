package llm

import (
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient("", "", ""); err == nil {
		t.Error("empty API key should be rejected")
	}
}

func TestOpenAIClientDefaults(t *testing.T) {
	c, err := NewOpenAIClient("test-key", "", "")
	if err != nil {
		t.Fatal(err)
	}

	if c.defaultModel != "gpt-4o" {
		t.Errorf("default model = %q, want gpt-4o", c.defaultModel)
	}

	models := c.Models()
	if len(models) == 0 || models[0] != c.defaultModel {
		t.Errorf("Models() should lead with the default model, got %v", models)
	}
}

func TestOpenAIClientCustomModel(t *testing.T) {
	c, err := NewOpenAIClient("test-key", "", openai.GPT4oMini)
	if err != nil {
		t.Fatal(err)
	}
	if c.defaultModel != "gpt-4o-mini" {
		t.Errorf("default model = %q, want gpt-4o-mini", c.defaultModel)
	}
}
