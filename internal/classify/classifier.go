package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/helpdesk-io/ticketdesk/internal/domain"
)

// classifyPrompt is an external contract: providers are guided entirely
// by this text, so it must spell out the full category and priority
// vocabularies and their meanings.
const classifyPrompt = `You are a support ticket classifier. Given a support ticket description, return ONLY a JSON object with two fields:
- "category": one of "billing", "technical", "account", "general"
- "priority": one of "low", "medium", "high", "critical"

Rules:
- billing: payment issues, invoices, charges, refunds, subscriptions
- technical: bugs, errors, crashes, performance, integrations
- account: login, password, profile, permissions, access
- general: anything else

Priority guide:
- critical: system down, data loss, security breach, complete blocker
- high: major feature broken, significant business impact
- medium: partial functionality affected, workaround exists
- low: minor issue, cosmetic, nice-to-have

Return ONLY valid JSON, no explanation, no markdown.

Ticket description: %s`

// Classifier asks the configured provider to suggest a category and
// priority for a free-text description. Every failure path degrades to
// null suggestions; the caller never sees an error.
type Classifier struct {
	provider Provider
	logger   *zap.Logger
}

// NewClassifier constructs the classifier. A nil provider means the
// feature is disabled and Classify always returns null suggestions.
func NewClassifier(provider Provider, logger *zap.Logger) *Classifier {
	return &Classifier{provider: provider, logger: logger}
}

// Enabled reports whether a provider is configured.
func (c *Classifier) Enabled() bool {
	return c.provider != nil
}

// Classify suggests a category/priority pair for the description. The
// description must already be non-empty; the HTTP layer rejects blank
// input before this runs.
func (c *Classifier) Classify(ctx context.Context, description string) domain.Suggestion {
	if c.provider == nil {
		return domain.Suggestion{}
	}

	prompt := fmt.Sprintf(classifyPrompt, description)
	raw, err := c.provider.Complete(ctx, prompt, CompletionOptions{
		Temperature: 0.1,
		MaxTokens:   100,
	})
	if err != nil {
		c.logger.Warn("classification provider failed",
			zap.String("provider", c.provider.Name()),
			zap.Error(err))
		return domain.Suggestion{}
	}

	var parsed struct {
		Category string `json:"category"`
		Priority string `json:"priority"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		c.logger.Warn("unparseable classification reply",
			zap.String("provider", c.provider.Name()),
			zap.Error(err))
		return domain.Suggestion{}
	}

	return validateSuggestion(parsed.Category, parsed.Priority)
}

// extractJSON pulls the candidate JSON object out of a raw provider
// reply. Fenced code blocks (optionally tagged json) are stripped first;
// the fallback takes the first "{" through the last "}" so leading or
// trailing prose is tolerated.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		return s[start : end+1]
	}
	return s
}

// validateSuggestion checks each field independently against its closed
// vocabulary; an invalid field becomes nil without discarding the other.
func validateSuggestion(category, priority string) domain.Suggestion {
	var suggestion domain.Suggestion

	cat := strings.ToLower(strings.TrimSpace(category))
	if domain.TicketCategory(cat).Valid() {
		suggestion.Category = &cat
	}

	prio := strings.ToLower(strings.TrimSpace(priority))
	if domain.TicketPriority(prio).Valid() {
		suggestion.Priority = &prio
	}

	return suggestion
}
