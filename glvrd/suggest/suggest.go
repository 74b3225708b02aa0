// Package suggest asks a chat model to rewrite fragments flagged by Glavred.
package suggest

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/JohnPlummer/glvrd-client/glvrd"
)

//go:embed prompts/suggest_prompt.txt
var promptFS embed.FS

const systemPrompt = "You are a careful Russian copy editor. You rewrite only the fragments you are given and follow the editor's explanation for each one."

// OpenAIClient defines the interface for interacting with OpenAI API
type OpenAIClient interface {
	CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds the configuration for a Suggester
type Config struct {
	APIKey     string // OpenAI API key (required)
	Model      string // Chat model, defaults to GPT-4o mini
	PromptText string // Custom prompt with two %s placeholders: text and fragment list
}

// Suggestion is a proposed rewrite for one fragment
type Suggestion struct {
	Fragment *glvrd.Fragment `json:"fragment"`
	Original string          `json:"original"` // Text covered by the fragment
	Rewrite  string          `json:"rewrite"`  // Replacement, empty to remove the fragment
	Reason   string          `json:"reason"`
}

// Suggester produces rewrite suggestions
type Suggester struct {
	client OpenAIClient
	model  string
	prompt string
}

var ErrMissingAPIKey = errors.New("OpenAI API key is required")

type suggestResponse struct {
	Suggestions []suggestionItem `json:"suggestions"`
}

type suggestionItem struct {
	Index   int    `json:"index"`
	Rewrite string `json:"rewrite"`
	Reason  string `json:"reason"`
}

// New creates a Suggester backed by the OpenAI API
func New(cfg Config) (*Suggester, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	s, err := NewWithClient(openai.NewClient(cfg.APIKey))
	if err != nil {
		return nil, err
	}
	if cfg.Model != "" {
		s.model = cfg.Model
	}
	if cfg.PromptText != "" {
		s.prompt = cfg.PromptText
	}
	return s, nil
}

// Option customizes a Suggester
type Option func(*Suggester)

// WithModel sets the chat model
func WithModel(model string) Option {
	return func(s *Suggester) {
		s.model = model
	}
}

// WithPrompt sets a custom prompt
func WithPrompt(prompt string) Option {
	return func(s *Suggester) {
		s.prompt = prompt
	}
}

// NewWithClient creates a Suggester with a custom OpenAI client
func NewWithClient(client OpenAIClient, opts ...Option) (*Suggester, error) {
	prompt, err := promptFS.ReadFile("prompts/suggest_prompt.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to load suggest prompt: %w", err)
	}

	s := &Suggester{
		client: client,
		model:  openai.GPT4oMini,
		prompt: string(prompt),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Suggest returns one suggestion per flagged fragment of res, in fragment
// order. Fragments the model did not answer for are skipped.
func (s *Suggester) Suggest(ctx context.Context, res *glvrd.ProofreadResult) ([]Suggestion, error) {
	if res == nil {
		return nil, glvrd.ErrNilResult
	}
	if len(res.Fragments) == 0 {
		return nil, nil
	}

	schema, err := jsonschema.GenerateSchemaForType(suggestResponse{})
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	prompt := fmt.Sprintf(s.prompt, res.Text, formatFragments(res))
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "fragment_rewrites",
				Schema: schema,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("OpenAI returned empty response with no choices")
	}

	var parsed suggestResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal OpenAI response: %w", err)
	}

	byIndex := make(map[int]suggestionItem, len(parsed.Suggestions))
	for _, item := range parsed.Suggestions {
		byIndex[item.Index] = item
	}

	suggestions := make([]Suggestion, 0, len(res.Fragments))
	for i, fragment := range res.Fragments {
		item, ok := byIndex[i+1]
		if !ok {
			slog.Warn("missing suggestion from model",
				"index", i+1,
				"hint_id", fragment.HintID)
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Fragment: fragment,
			Original: res.FragmentText(fragment),
			Rewrite:  item.Rewrite,
			Reason:   item.Reason,
		})
	}

	slog.Debug("Suggestions generated",
		"fragments", len(res.Fragments),
		"suggestions", len(suggestions))

	return suggestions, nil
}

// formatFragments lists fragments as numbered lines starting at 1
func formatFragments(res *glvrd.ProofreadResult) string {
	var sb strings.Builder
	for i, fragment := range res.Fragments {
		fmt.Fprintf(&sb, "%d. %q", i+1, res.FragmentText(fragment))
		if fragment.Hint != nil {
			fmt.Fprintf(&sb, " - %s: %s", fragment.Hint.Name, fragment.Hint.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
