package llm

import (
	"context"
	"iter"
	"log/slog"
	"time"
)

// LoggingProvider is a decorator that records every LLM call through slog.
type LoggingProvider struct {
	inner Provider
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider) Provider {
	return &LoggingProvider{inner: p}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	attrs := []any{
		"model", l.inner.ModelID(),
		"purpose", PurposeFrom(ctx),
		"latency_ms", time.Since(start).Milliseconds(),
	}

	if err != nil {
		slog.Warn("llm generate failed", append(attrs, "error", err)...)
		return nil, err
	}

	attrs = append(attrs,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	if c := LookupCost(resp.Model); c != nil {
		attrs = append(attrs, "cost_usd", c.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens))
	}

	slog.Debug("llm generate", attrs...)
	return resp, nil
}

func (l *LoggingProvider) GenerateStream(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		start := time.Now()
		chunks := 0
		var streamErr error

		for chunk, err := range l.inner.GenerateStream(ctx, req) {
			if err != nil {
				streamErr = err
			} else {
				chunks++
			}
			if !yield(chunk, err) {
				break
			}
		}

		attrs := []any{
			"model", l.inner.ModelID(),
			"purpose", PurposeFrom(ctx),
			"latency_ms", time.Since(start).Milliseconds(),
			"chunks", chunks,
		}
		if streamErr != nil {
			slog.Warn("llm stream failed", append(attrs, "error", streamErr)...)
			return
		}
		slog.Debug("llm stream", attrs...)
	}
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
