package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/domain/assistant"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
	"github.com/kailas-cloud/searchgate/internal/domain/user"
	"github.com/kailas-cloud/searchgate/internal/logger"
	"github.com/kailas-cloud/searchgate/internal/metrics"
)

// Token limits per operation.
const (
	SummaryMaxTokens       = 300
	ComprehensiveMaxTokens = 1500
	ChatMaxTokens          = 500
)

// Confidence reported for generated and fallback summaries.
const (
	GeneratedConfidence = 0.8
	FallbackConfidence  = 0.0
)

var errNotConfigured = fmt.Errorf("%w: provider not configured", domain.ErrGenerationFailed)

// Service produces summaries and chat replies over search results.
// Every operation degrades to deterministic fallback text instead of failing.
type Service struct {
	gen Generator
}

// New creates a Service. gen can be nil, in which case every call falls back.
func New(gen Generator) *Service {
	return &Service{gen: gen}
}

// Summary digests a page of results for the requesting user.
func (s *Service) Summary(ctx context.Context, req assistant.SummaryRequest, u user.User) assistant.SummaryResponse {
	dist := sourceDistribution(req.SearchResults)

	text, err := s.generate(ctx, []assistant.Message{
		{Role: assistant.RoleSystem, Content: summarySystemPrompt(u, len(req.SearchResults))},
		{Role: assistant.RoleUser, Content: summaryUserPrompt(req.Query, req.SearchResults)},
	}, SummaryMaxTokens)
	if err != nil {
		s.fallback(ctx, "summary", err)
		return assistant.SummaryResponse{
			Summary:            fallbackSummaryText(req.SearchResults),
			SourceDistribution: dist,
			ConfidenceScore:    confidence(FallbackConfidence),
		}
	}

	return assistant.SummaryResponse{
		Summary:            text,
		SourceDistribution: dist,
		ConfidenceScore:    confidence(GeneratedConfidence),
	}
}

// ComprehensiveSummary writes a long-form report over the selected documents.
func (s *Service) ComprehensiveSummary(
	ctx context.Context, req assistant.ComprehensiveRequest, u user.User,
) assistant.ComprehensiveResponse {
	text, err := s.generate(ctx, []assistant.Message{
		{Role: assistant.RoleSystem, Content: comprehensiveSystemPrompt(u)},
		{Role: assistant.RoleUser, Content: comprehensiveUserPrompt(req.SelectedDocuments, u)},
	}, ComprehensiveMaxTokens)
	if err != nil {
		s.fallback(ctx, "comprehensive_summary", err)
		return assistant.ComprehensiveResponse{Summary: fallbackReport(req.SelectedDocuments, u)}
	}
	return assistant.ComprehensiveResponse{Summary: text}
}

// Chat answers one user turn, replaying the conversation history.
func (s *Service) Chat(ctx context.Context, req assistant.ChatRequest, u user.User) assistant.ChatResponse {
	hasContext := len(req.SearchContext) > 0

	messages := make([]assistant.Message, 0, len(req.ConversationHistory)+2)
	messages = append(messages, assistant.Message{Role: assistant.RoleSystem, Content: chatSystemPrompt(u, hasContext)})
	for _, m := range req.ConversationHistory {
		messages = append(messages, assistant.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, assistant.Message{
		Role:    assistant.RoleUser,
		Content: chatUserPrompt(req.Message, req.SearchContext),
	})

	sources := contextSources(req.SearchContext)

	text, err := s.generate(ctx, messages, ChatMaxTokens)
	if err != nil {
		s.fallback(ctx, "chat", err)
		return assistant.ChatResponse{
			Response:          fallbackChatText(err, len(req.SearchContext), sources),
			ContextUsed:       hasContext,
			SourcesReferenced: sources,
		}
	}

	return assistant.ChatResponse{
		Response:          text,
		ContextUsed:       hasContext,
		SourcesReferenced: sources,
	}
}

// ChatFailure is the reply used when a chat request cannot be processed at all.
func ChatFailure(err error, contextUsed bool) assistant.ChatResponse {
	return assistant.ChatResponse{
		Response: fmt.Sprintf("I'm sorry, I'm having trouble accessing the AI system right now. Error: %v. "+
			"Please try again later or check the system configuration.", err),
		ContextUsed:       contextUsed,
		SourcesReferenced: []string{},
	}
}

func (s *Service) generate(ctx context.Context, messages []assistant.Message, maxTokens int) (string, error) {
	if s.gen == nil {
		return "", errNotConfigured
	}
	return s.gen.Generate(ctx, messages, assistant.Options{MaxTokens: maxTokens})
}

func (s *Service) fallback(ctx context.Context, op string, err error) {
	metrics.LLMFallbacksTotal.WithLabelValues(op).Inc()
	logger.FromContext(ctx).Error("text generation failed, serving fallback",
		zap.String("operation", op), zap.Error(err))
}

func confidence(v float64) *float64 { return &v }

func sourceDistribution(results []result.Result) map[string]int {
	dist := make(map[string]int)
	for _, r := range results {
		dist[r.Source]++
	}
	return dist
}

func resultSources(results []result.Result) []string {
	all := make([]string, len(results))
	for i, r := range results {
		all[i] = r.Source
	}
	return distinct(all)
}

func contextSources(searchContext []map[string]any) []string {
	all := make([]string, len(searchContext))
	for i, r := range searchContext {
		all[i] = lookup(r, "source", result.DefaultSource)
	}
	return distinct(all)
}

func fallbackSummaryText(results []result.Result) string {
	titles := make([]string, 0, 3)
	for i, r := range results {
		if i == 3 {
			break
		}
		titles = append(titles, r.Title)
	}
	return fmt.Sprintf("Found %d relevant documents across %s. The results include %s. "+
		"Unable to generate AI summary - please check OpenAI API configuration.",
		len(results), strings.Join(resultSources(results), ", "), strings.Join(titles, ", "))
}

func fallbackReport(docs []result.Result, u user.User) string {
	authors := make([]string, len(docs))
	for i, d := range docs {
		authors[i] = d.Author
	}

	first, last := "N/A", "N/A"
	if len(docs) > 0 {
		first, last = docs[0].Date, docs[len(docs)-1].Date
	}

	var list strings.Builder
	for i, d := range docs {
		if i > 0 {
			list.WriteByte('\n')
		}
		fmt.Fprintf(&list, "%d. **%s** (%s) - %s...", i+1, d.Title, d.Source, truncate(d.Summary, fallbackSummary))
	}

	return fmt.Sprintf(`## Summary of %d Selected Documents

**Sources:** %s
**Authors:** %s
**Date Range:** %s - %s

**Key Documents:**
%s

**Note:** Unable to generate AI-powered summary. Please check OpenAI API configuration. You can review the individual documents above for detailed information.

**Recommendation:** Review each document individually for complete context and insights relevant to your role as %s.`,
		len(docs), strings.Join(resultSources(docs), ", "), strings.Join(distinct(authors), ", "),
		first, last, list.String(), u.Position)
}

func fallbackChatText(err error, n int, sources []string) string {
	var ge *domain.GenerationError
	status := 0
	if errors.As(err, &ge) {
		status = ge.Status
	}

	joined := strings.Join(sources, ", ")
	switch status {
	case http.StatusUnauthorized:
		return fmt.Sprintf("I'm having trouble accessing the AI system - please check the OpenAI API key configuration. "+
			"Based on the %d search results currently displayed, I can see content from %s.", n, joined)
	case http.StatusTooManyRequests:
		return fmt.Sprintf("The AI system is currently rate limited. Please try again in a moment. "+
			"In the meantime, you can review the %d search results directly.", n)
	default:
		return fmt.Sprintf("I'm having trouble accessing the AI system right now. "+
			"Based on the %d search results currently displayed, I can see content from %s. "+
			"Please try rephrasing your question or check the results directly.", n, joined)
	}
}
