package classify

import (
	"context"

	"go.uber.org/zap"

	"github.com/helpdesk-io/ticketdesk/internal/config"
)

// CompletionOptions configures a single completion request.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// Provider is a text-generation backend. Implementations differ only in
// request/response shape; prompt rendering and reply parsing live in the
// Classifier.
type Provider interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
	Name() string
}

// NewProviderFromConfig selects the active provider. CLASSIFY_PROVIDER
// forces a choice; otherwise the first configured credential wins, Groq
// before Anthropic. A nil return means classification is disabled and
// every request answers with null suggestions.
func NewProviderFromConfig(cfg config.ClassifyConfig, logger *zap.Logger) Provider {
	switch cfg.Provider {
	case "groq":
		if cfg.GroqAPIKey == "" {
			logger.Warn("CLASSIFY_PROVIDER=groq but GROQ_API_KEY missing; classification disabled")
			return nil
		}
		return NewGroqProvider(cfg.GroqAPIKey, cfg.GroqModel, cfg.Timeout())
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			logger.Warn("CLASSIFY_PROVIDER=anthropic but ANTHROPIC_API_KEY missing; classification disabled")
			return nil
		}
		return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.Timeout())
	case "":
		if cfg.GroqAPIKey != "" {
			return NewGroqProvider(cfg.GroqAPIKey, cfg.GroqModel, cfg.Timeout())
		}
		if cfg.AnthropicAPIKey != "" {
			return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.Timeout())
		}
		logger.Warn("no classification credential configured; classification disabled")
		return nil
	default:
		logger.Warn("unknown CLASSIFY_PROVIDER; classification disabled", zap.String("provider", cfg.Provider))
		return nil
	}
}
