package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ersonp/patchrag/internal/domain/entities"
	"github.com/ersonp/patchrag/internal/domain/ports"
)

// FallbackAnswer is returned when the context cannot answer the question.
const FallbackAnswer = "I'm sorry, I cannot answer this question based on the provided patch notes."

const answerPrompt = `You are a helpful assistant for answering questions related to Dota 2 patches. If the user asks for a patch update for a specific hero / item, you should mention all of the patch updates from the retrieved contexts.

Use the following pieces of retrieved context to answer the question.
You must answer based **ONLY** on the provided context.
If you don't know the answer or the context doesn't contain the answer, just say "%s"
Do not make up an answer or use any external knowledge.

Include the patch name from the metadata to the responses enclosed in parentheses. If not known, no need to put the patch name.

CONTEXT:
%s

QUESTION: %s

ANSWER (based ONLY on the context):`

// Answer is the synthesized reply with the documents it was drawn from.
type Answer struct {
	Question string
	Text     string
	Filter   entities.Filter
	Sources  []entities.RetrievedDocument
}

// AnswerService retrieves context for a question and asks the model.
type AnswerService struct {
	query         *QueryService
	generator     ports.AnswerGenerator
	counter       ports.TokenCounter
	contextTokens int
}

// NewAnswerService creates an answer service. counter may be nil, in which
// case the context is not trimmed.
func NewAnswerService(query *QueryService, generator ports.AnswerGenerator, counter ports.TokenCounter, contextTokens int) *AnswerService {
	return &AnswerService{
		query:         query,
		generator:     generator,
		counter:       counter,
		contextTokens: contextTokens,
	}
}

// Ask answers a question from the retrieved documents only.
func (s *AnswerService) Ask(ctx context.Context, req RetrievalRequest) (*Answer, error) {
	retrieved, err := s.query.Retrieve(ctx, req)
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		Question: retrieved.Query,
		Filter:   retrieved.Filter,
	}

	docs := s.fitContext(retrieved.Documents)
	answer.Sources = docs
	if len(docs) == 0 {
		answer.Text = FallbackAnswer
		return answer, nil
	}

	text, err := s.generator.Generate(ctx, BuildPrompt(retrieved.Query, docs))
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}
	answer.Text = strings.TrimSpace(text)

	return answer, nil
}

// fitContext keeps documents in rank order while they fit the token budget.
// The top document is always kept.
func (s *AnswerService) fitContext(docs []entities.RetrievedDocument) []entities.RetrievedDocument {
	if s.counter == nil || s.contextTokens <= 0 || len(docs) == 0 {
		return docs
	}

	used := 0
	for i, doc := range docs {
		used += s.counter.CountTokens(contextEntry(doc))
		if i > 0 && used > s.contextTokens {
			return docs[:i]
		}
	}
	return docs
}

// BuildPrompt fills the answer template with the question and documents.
func BuildPrompt(question string, docs []entities.RetrievedDocument) string {
	entries := make([]string, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, contextEntry(doc))
	}
	return fmt.Sprintf(answerPrompt, FallbackAnswer, strings.Join(entries, "\n\n"), question)
}

func contextEntry(doc entities.RetrievedDocument) string {
	m := doc.Metadata
	var b strings.Builder
	fmt.Fprintf(&b, "[patch_name: %s | type: %s | subtype: %s | title: %s", m.PatchName, m.Type, m.Subtype, m.Title)
	if m.SkillName != nil {
		fmt.Fprintf(&b, " | skill_name: %s", *m.SkillName)
	}
	b.WriteString("]\n")
	b.WriteString(doc.PageContent)
	return b.String()
}
