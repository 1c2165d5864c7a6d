package openai

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/ersonp/patchrag/internal/domain/ports"
)

// fallbackEncoding is used for models tiktoken does not know.
const fallbackEncoding = "cl100k_base"

// TokenCounter counts tokens with the BPE encoding of a chat model.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// Ensure TokenCounter implements ports.TokenCounter.
var _ ports.TokenCounter = (*TokenCounter)(nil)

// NewTokenCounter loads the encoding for model. Loading may download the
// BPE ranks on first use.
func NewTokenCounter(model string) (*TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("loading tokenizer: %w", err)
		}
	}
	return &TokenCounter{enc: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (t *TokenCounter) CountTokens(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}
