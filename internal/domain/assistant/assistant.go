// Package assistant holds the request and response shapes of the
// text-generation features layered over search results.
package assistant

import "github.com/kailas-cloud/searchgate/internal/domain/search/result"

// Message roles understood by chat-completion providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Options tunes a single generation call.
type Options struct {
	MaxTokens int
}

// SummaryRequest asks for a short digest of a result page.
type SummaryRequest struct {
	Query         string          `json:"query"`
	SearchResults []result.Result `json:"search_results"`
}

// SummaryResponse is the digest of a result page.
type SummaryResponse struct {
	Summary            string         `json:"summary"`
	SourceDistribution map[string]int `json:"source_distribution"`
	ConfidenceScore    *float64       `json:"confidence_score"`
}

// ComprehensiveRequest asks for a long-form report over hand-picked results.
type ComprehensiveRequest struct {
	SelectedDocuments []result.Result `json:"selected_documents"`
}

// ComprehensiveResponse wraps the generated report.
type ComprehensiveResponse struct {
	Summary string `json:"summary"`
}

// ChatRequest is one user turn with optional search context.
// SearchContext entries are loosely shaped result objects as sent by clients.
type ChatRequest struct {
	Message             string           `json:"message"`
	SearchContext       []map[string]any `json:"search_context"`
	ConversationHistory []Message        `json:"conversation_history"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Response          string   `json:"response"`
	ContextUsed       bool     `json:"context_used"`
	SourcesReferenced []string `json:"sources_referenced"`
}
