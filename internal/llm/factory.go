package llm

import (
	"context"
	"fmt"
)

// NewProvider creates a Provider from configuration, wrapped with logging.
// There is no retry middleware: a failed generation call surfaces to the
// caller, which substitutes fallback content instead of retrying.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base), nil
}

// Media unwraps a MediaProvider from p if its underlying provider supports
// image and speech generation.
func Media(p Provider) (MediaProvider, bool) {
	if l, ok := p.(*LoggingProvider); ok {
		p = l.inner
	}
	m, ok := p.(MediaProvider)
	return m, ok
}
