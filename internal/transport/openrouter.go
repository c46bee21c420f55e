// internal/transport/openrouter.go
package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"nutrilens/internal/config"
	"nutrilens/internal/gateway"
)

// OpenRouter sends prompts to an OpenAI-compatible chat completions endpoint.
type OpenRouter struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	appName    string
}

func NewOpenRouter(cfg config.OpenRouterConfig, httpClient *http.Client) *OpenRouter {
	return &OpenRouter{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		appName:    cfg.AppName,
	}
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (o *OpenRouter) Send(ctx context.Context, req gateway.Request) (string, error) {
	parts := []contentPart{{Type: "text", Text: req.Prompt}}
	if req.Multimodal() {
		dataURL := fmt.Sprintf("data:%s;base64,%s", req.Media.MIMEType, base64.StdEncoding.EncodeToString(req.Media.Data))
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: dataURL}})
	}

	jsonData, err := json.Marshal(chatRequest{
		Model:       o.model,
		Messages:    []chatMessage{{Role: "user", Content: parts}},
		MaxTokens:   2000,
		Temperature: 0.1, // low temperature for consistent analysis
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", errors.Wrap(err, "failed to create HTTP request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.appName != "" {
		httpReq.Header.Set("X-Title", o.appName)
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read response with status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &gateway.StatusError{Code: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", errors.Wrap(err, "failed to decode response")
	}
	// OpenRouter reports some provider failures inside a 200 body
	if completion.Error != nil {
		code := completion.Error.Code
		if code == 0 {
			code = http.StatusBadGateway
		}
		return "", &gateway.StatusError{Code: code, Message: completion.Error.Message}
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("response does not contain any choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// errorMessage extracts error.message from an error body, falling back to the raw text.
func errorMessage(body []byte, status string) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return status
}
