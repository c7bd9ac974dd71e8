package assistant

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
	"github.com/kailas-cloud/searchgate/internal/domain/user"
)

// Preview lengths, in characters.
const (
	comprehensivePreview = 800
	chatPreview          = 300
	fallbackSummary      = 100
)

func summarySystemPrompt(u user.User, n int) string {
	return fmt.Sprintf(`You are an AI assistant for a Bank's enterprise search system. Your role is to analyze search results and provide concise, professional summaries for %s, a %s in %s.

Context: You have access to %d documents from various sources (Jira, Confluence, SharePoint) related to the user's query.

Guidelines:
- Provide a professional, executive-level summary
- Highlight key insights and critical information
- Mention source distribution and relevance scores
- Focus on actionable insights relevant to a %s
- Keep the summary concise but informative (2-3 sentences)`,
		u.Name, u.Position, u.Department, n, u.Position)
}

func summaryUserPrompt(query string, results []result.Result) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. Title: %s\n   Source: %s\n   Summary: %s\n   Relevance: %d%%",
			i+1, r.Title, r.Source, r.Summary, r.RelevanceScore)
	}

	return fmt.Sprintf(`Query: "%s"

Search Results Context:
%s

Please provide a professional summary of these search results in response to the user's query.`,
		query, b.String())
}

func comprehensiveSystemPrompt(u user.User) string {
	return fmt.Sprintf(`You are an AI assistant for a Bank's enterprise search system. Your role is to create comprehensive summaries for %s, a %s in %s.

Your task is to analyze multiple documents and create a unified, executive-level summary that:
- Synthesizes key information across all selected documents
- Identifies common themes, patterns, and insights
- Highlights critical issues, decisions, or opportunities
- Provides actionable recommendations relevant to a %s
- Structures information in a clear, professional format
- Considers the business context of %s

Focus on insights that would be valuable for strategic decision-making and operational excellence.`,
		u.Name, u.Position, u.Department, u.Position, u.Department)
}

func comprehensiveUserPrompt(docs []result.Result, u user.User) string {
	var b strings.Builder
	for i, d := range docs {
		preview := d.Summary
		if d.Content != "" {
			preview = truncate(d.Content, comprehensivePreview)
		}
		fmt.Fprintf(&b, "Document %d: %s\nSource: %s\nAuthor: %s\nDate: %s\nSummary: %s\n"+
			"Content Preview: %s\nTags: %s\nRelevance Score: %d%%\n\n---\n",
			i+1, d.Title, d.Source, d.Author, d.Date, d.Summary,
			preview, strings.Join(d.Tags, ", "), d.RelevanceScore)
	}

	return fmt.Sprintf(`Please create a comprehensive summary of the following %d documents:

%s

Please provide:
1. Executive Summary (2-3 sentences)
2. Key Themes & Insights
3. Critical Issues or Opportunities
4. Actionable Recommendations
5. Next Steps or Follow-up Actions

Tailor your analysis to be most relevant for a %s in %s.`,
		len(docs), b.String(), u.Position, u.Department)
}

func chatSystemPrompt(u user.User, hasContext bool) string {
	company := u.Company
	if company == "" {
		company = "the organization"
	}
	source, current := "general knowledge", "No specific search context - providing general assistance"
	if hasContext {
		source, current = "retrieved documents", "Documents found and analyzed"
	}

	return fmt.Sprintf(`You are a helpful AI assistant for %s's enterprise search system. You are chatting with %s, a %s in the %s department.

Your role:
- Help analyze and discuss information from enterprise documents (Jira, Confluence, SharePoint)
- Provide insights relevant to a senior professional in their field
- Answer questions based on %s in a professional, concise manner
- Reference specific documents when relevant
- If no search context is available, provide general helpful answers but mention limitations
- Maintain a helpful but professional tone

Current context: %s.`,
		company, u.Name, u.Position, u.Department, source, current)
}

func chatUserPrompt(message string, searchContext []map[string]any) string {
	if len(searchContext) == 0 {
		return message + `

Note: No specific search context is available. Please provide a helpful general response while noting that access to specific company documents would improve the answer.`
	}

	var b strings.Builder
	for i, r := range searchContext {
		if i > 0 {
			b.WriteByte('\n')
		}
		relevance := lookup(r, "relevance_score", lookup(r, "relevanceScore", "0"))
		content := lookup(r, "content", lookup(r, "summary", ""))
		fmt.Fprintf(&b, "%d. %s (%s)\n   Summary: %s\n   Relevance: %s%%\n   URL: %s\n   Content Preview: %s",
			i+1, lookup(r, "title", "Unknown"), lookup(r, "source", result.DefaultSource),
			lookup(r, "summary", ""), relevance, lookup(r, "url", result.DefaultURL),
			truncate(content, chatPreview))
	}

	return fmt.Sprintf(`%s

Available search results for context:
%s

Please respond helpfully based on the search results and conversation context.`,
		message, b.String())
}

// lookup reads a loosely typed context field. Null counts as absent.
func lookup(m map[string]any, key, def string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// distinct returns the unique values in first-seen order.
func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
