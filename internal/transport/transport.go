// internal/transport/transport.go
package transport

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"nutrilens/internal/config"
	"nutrilens/internal/gateway"
)

// New builds the transport for the configured provider.
func New(ctx context.Context, cfg *config.Config) (gateway.Transport, error) {
	httpClient := &http.Client{Timeout: cfg.Retry.RequestTimeout}

	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.Gemini, httpClient)
	case config.ProviderOpenRouter:
		return NewOpenRouter(cfg.OpenRouter, httpClient), nil
	default:
		return nil, errors.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
