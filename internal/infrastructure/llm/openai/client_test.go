package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/infrastructure/config"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LLMConfig
		wantErr   bool
		errMsg    string
		wantModel string
	}{
		{
			name: "valid config",
			cfg: config.LLMConfig{
				APIKey: "test-key",
			},
			wantModel: "gpt-4.1-mini",
		},
		{
			name: "valid config with model",
			cfg: config.LLMConfig{
				APIKey: "test-key",
				Model:  "gpt-4o",
			},
			wantModel: "gpt-4o",
		},
		{
			name:    "missing API key",
			cfg:     config.LLMConfig{},
			wantErr: true,
			errMsg:  "API key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, client.Model())
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON",
			input:    `{"query": "axe"}`,
			expected: `{"query": "axe"}`,
		},
		{
			name:     "JSON with json code block",
			input:    "```json\n{\"query\": \"axe\"}\n```",
			expected: `{"query": "axe"}`,
		},
		{
			name:     "JSON with plain code block",
			input:    "```\n{\"query\": \"axe\"}\n```",
			expected: `{"query": "axe"}`,
		},
		{
			name:     "JSON with whitespace",
			input:    "  \n{}\n  ",
			expected: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanJSONResponse(tt.input))
		})
	}
}

func TestValueToString(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "string value", input: "Axe", expected: "Axe"},
		{name: "patch number as float64", input: float64(7.38), expected: "7.38"},
		{name: "integer as float64", input: float64(7), expected: "7"},
		{name: "bool", input: true, expected: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, valueToString(tt.input))
		})
	}
}

func TestParseStructuredQuery(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantQuery string
		want      entities.Filter
		wantErr   bool
	}{
		{
			name:      "full filter",
			input:     `{"query": "damage changes", "filter": {"title": "Axe", "patch_number": "7.38c", "type": "heroes"}}`,
			wantQuery: "damage changes",
			want:      entities.Filter{Title: "Axe", PatchNumber: "7.38c", Type: "heroes"},
		},
		{
			name:      "unknown attributes dropped",
			input:     `{"query": "q", "filter": {"rarity": "rare", "subtype": "facets"}}`,
			wantQuery: "q",
			want:      entities.Filter{Subtype: "facets"},
		},
		{
			name:      "numeric and null values",
			input:     "```json\n{\"query\": \"q\", \"filter\": {\"patch_name\": 7.37, \"title\": null}}\n```",
			wantQuery: "q",
			want:      entities.Filter{PatchName: "7.37"},
		},
		{
			name:      "null filter",
			input:     `{"query": "anything", "filter": null}`,
			wantQuery: "anything",
			want:      entities.Filter{},
		},
		{
			name:    "not json",
			input:   "I think you mean Axe",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			structured, err := parseStructuredQuery(tt.input)
			if tt.wantErr {
				assert.ErrorContains(t, err, "parsing structured query JSON")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, structured.Query)
			assert.Equal(t, tt.want, structured.Filter)
		})
	}
}

// chatServer replies to every chat completion with content and records the
// decoded requests.
func chatServer(t *testing.T, content string, requests *[]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		*requests = append(*requests, req)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req["model"],
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": content},
				},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Generate(t *testing.T) {
	var requests []map[string]any
	srv := chatServer(t, "Axe got stronger (7.38c).", &requests)

	client, err := NewClient(config.LLMConfig{APIKey: "k", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	answer, err := client.Generate(context.Background(), "PROMPT")
	require.NoError(t, err)
	assert.Equal(t, "Axe got stronger (7.38c).", answer)

	require.Len(t, requests, 1)
	assert.Equal(t, "gpt-4.1-mini", requests[0]["model"])
	messages := requests[0]["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "PROMPT", messages[0].(map[string]any)["content"])
}

func TestClient_ConstructQuery(t *testing.T) {
	t.Run("structured reply", func(t *testing.T) {
		var requests []map[string]any
		srv := chatServer(t, `{"query": "", "filter": {"title": "Axe"}}`, &requests)

		client, err := NewClient(config.LLMConfig{APIKey: "k", BaseURL: srv.URL + "/v1"})
		require.NoError(t, err)

		structured, err := client.ConstructQuery(context.Background(), "What changed for Axe?")
		require.NoError(t, err)
		assert.Equal(t, "What changed for Axe?", structured.Query)
		assert.Equal(t, entities.Filter{Title: "Axe"}, structured.Filter)

		require.Len(t, requests, 1)
		format := requests[0]["response_format"].(map[string]any)
		assert.Equal(t, "json_object", format["type"])
	})

	t.Run("unparseable reply", func(t *testing.T) {
		var requests []map[string]any
		srv := chatServer(t, "no idea", &requests)

		client, err := NewClient(config.LLMConfig{APIKey: "k", BaseURL: srv.URL + "/v1"})
		require.NoError(t, err)

		_, err = client.ConstructQuery(context.Background(), "Axe?")
		assert.Error(t, err)
	})
}
