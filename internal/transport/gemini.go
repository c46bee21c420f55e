// internal/transport/gemini.go
package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"nutrilens/internal/config"
	"nutrilens/internal/gateway"
)

// Gemini sends prompts through the Google GenAI SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, cfg config.GeminiConfig, httpClient *http.Client) (*Gemini, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init genai client")
	}
	return &Gemini{client: client, model: cfg.Model}, nil
}

func (g *Gemini) Send(ctx context.Context, req gateway.Request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Multimodal() {
		parts = append(parts, genai.NewPartFromBytes(req.Media.Data, req.Media.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.2),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &gateway.StatusError{Code: apiErr.Code, Message: apiErr.Message}
		}
		return "", errors.Wrapf(err, "failed to generate content with %s", g.model)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.Errorf("model %s returned no text", g.model)
	}
	return text, nil
}
