// Package openai provides answer generation and self-query construction
// using OpenAI chat models.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/ports"
	"github.com/ersonp/patchrag/internal/infrastructure/config"
)

const selfQueryPrompt = `Your goal is to structure the user's question about Dota 2 patch notes into a search query and a metadata filter.

The documents being searched have the following metadata attributes, all strings:
- patch_name: The name of the patch. Formatted as <major version>.<minor version><patch version> e.g. 7.38c
- patch_number: The official patch number, usually the same as patch_name. Formatted as <major version>.<minor version><patch version> e.g. 7.38c
- skill_name: (Optional) The name of the skill that is being patched, e.g. Berserker's Call
- type: The type of the patch change. One of: heroes, items, generic
- subtype: The subtype of the patch change. The "heroes" type can be abilities or facets while the "items" type can be hero_items or neutral_items
- title: The name of the hero or item, e.g. Axe

Return ONLY a JSON object of the form:
{"query": "<text to compare against document contents>", "filter": {"<attribute>": "<exact value>"}}

Only include attributes the question states explicitly. Use an empty object for "filter" when nothing applies. Do not invent attribute names or values outside the sets listed above. The query should contain the remaining search terms, without the filtered values.`

// Client implements the AnswerGenerator and QueryConstructor interfaces
// using OpenAI.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
}

// Ensure Client implements the LLM ports.
var (
	_ ports.AnswerGenerator  = (*Client)(nil)
	_ ports.QueryConstructor = (*Client)(nil)
)

// NewClient creates a new OpenAI LLM client.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := "gpt-4.1-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

// Model returns the chat model name.
func (c *Client) Model() string {
	return c.model
}

// Generate sends a fully assembled prompt and returns the reply.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// ConstructQuery asks the model to split question into search text and an
// equality filter over the document metadata.
func (c *Client) ConstructQuery(ctx context.Context, question string) (ports.StructuredQuery, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: selfQueryPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: question,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return ports.StructuredQuery{}, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return ports.StructuredQuery{}, errors.New("no response from OpenAI")
	}

	structured, err := parseStructuredQuery(resp.Choices[0].Message.Content)
	if err != nil {
		return ports.StructuredQuery{}, err
	}
	if structured.Query == "" {
		structured.Query = question
	}
	return structured, nil
}

// rawStructuredQuery is the JSON structure returned for self-queries.
type rawStructuredQuery struct {
	Query  string         `json:"query"`
	Filter map[string]any `json:"filter"`
}

// parseStructuredQuery decodes the model reply. Unknown attributes are
// dropped and non-string values are stringified.
func parseStructuredQuery(content string) (ports.StructuredQuery, error) {
	content = cleanJSONResponse(content)

	var raw rawStructuredQuery
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return ports.StructuredQuery{}, fmt.Errorf("parsing structured query JSON: %w (response: %s)", err, content)
	}

	conds := make(map[string]string, len(raw.Filter))
	for key, value := range raw.Filter {
		if value == nil {
			continue
		}
		conds[key] = valueToString(value)
	}

	return ports.StructuredQuery{
		Query:  strings.TrimSpace(raw.Query),
		Filter: entities.FilterFromConditions(conds),
	}, nil
}

// valueToString converts a filter value to string (handles numbers from LLM).
func valueToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// cleanJSONResponse removes markdown code blocks if present.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
