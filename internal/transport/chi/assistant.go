package chi

import (
	"net/http"

	"go.uber.org/zap"

	domassistant "github.com/kailas-cloud/searchgate/internal/domain/assistant"
	assistantuc "github.com/kailas-cloud/searchgate/internal/usecase/assistant"
)

// Summary handles POST /api/v1/llm/summary.
func (s *Server) Summary(w http.ResponseWriter, r *http.Request) {
	var req domassistant.SummaryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	u, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, s.assistant.Summary(r.Context(), req, u))
}

// ComprehensiveSummary handles POST /api/v1/llm/comprehensive-summary.
func (s *Server) ComprehensiveSummary(w http.ResponseWriter, r *http.Request) {
	var req domassistant.ComprehensiveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	u, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, s.assistant.ComprehensiveSummary(r.Context(), req, u))
}

// Chat handles POST /api/v1/llm/chat. It always answers 200 so the
// conversation can continue; unreadable requests get an apology reply.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req domassistant.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.requestLogger(r).Warn("unreadable chat request", zap.Error(err))
		writeJSON(w, http.StatusOK, assistantuc.ChatFailure(err, false))
		return
	}

	u, _ := userFromContext(r.Context())
	resp := s.assistant.Chat(r.Context(), req, u)
	if resp.SourcesReferenced == nil {
		resp.SourcesReferenced = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}
