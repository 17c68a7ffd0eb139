package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 4096
)

// Caller sends a single prompt to a language model and returns its reply.
type Caller func(ctx context.Context, prompt string) (string, error)

// Config holds configuration for creating a Caller.
type Config struct {
	Provider string // "openai", "anthropic", or "ollama"
	Model    string // e.g. "gpt-4o-mini", "claude-haiku-4-5-20251001"
	APIKey   string // explicit API key (highest priority)
	BaseURL  string // override base URL

	// Timeout bounds one call (defaults to 60s).
	Timeout time.Duration

	Logger *slog.Logger
}

// NewCaller creates a Caller based on the provided configuration.
// Resolution order for API key:
//  1. Explicit APIKey in config
//  2. Environment variables (OPENAI_API_KEY / ANTHROPIC_API_KEY)
//  3. Fall back to Ollama at localhost:11434
func NewCaller(cfg Config) (Caller, error) {
	provider := strings.ToLower(cfg.Provider)
	model := cfg.Model

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = resolveAPIKeyFromEnv(provider)
	}

	baseURL := cfg.BaseURL
	if apiKey == "" && provider != ProviderOllama {
		logger.Warn("no API key found, falling back to ollama", "provider", provider)
		provider = ProviderOllama
		model, baseURL = "", ""
	}

	switch provider {
	case ProviderOpenAI, "":
		if model == "" {
			model = "gpt-4o-mini"
		}
		if baseURL == "" {
			baseURL = "https://api.openai.com"
		}
		return newOpenAICaller(client, apiKey, model, baseURL), nil

	case ProviderAnthropic:
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		if baseURL == "" {
			baseURL = "https://api.anthropic.com"
		}
		return newAnthropicCaller(client, apiKey, model, baseURL), nil

	case ProviderOllama:
		if model == "" {
			model = "llama3.2"
		}
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return newOllamaCaller(client, model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func resolveAPIKeyFromEnv(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case ProviderOpenAI, "":
		return os.Getenv("OPENAI_API_KEY")
	default:
		return ""
	}
}

// post sends a JSON body and returns the raw response body of a 200 reply.
func post(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// --- OpenAI caller ---

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newOpenAICaller(client *http.Client, apiKey, model, baseURL string) Caller {
	return func(ctx context.Context, prompt string) (string, error) {
		body, err := post(ctx, client, strings.TrimRight(baseURL, "/")+"/v1/chat/completions",
			map[string]string{"Authorization": "Bearer " + apiKey},
			openAIRequest{Model: model, Messages: []message{{Role: "user", Content: prompt}}},
		)
		if err != nil {
			return "", fmt.Errorf("openai: %w", err)
		}

		var result openAIResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("unmarshal response: %w", err)
		}
		if result.Error != nil {
			return "", fmt.Errorf("openai error: %s", result.Error.Message)
		}
		if len(result.Choices) == 0 {
			return "", errors.New("openai returned no choices")
		}
		return result.Choices[0].Message.Content, nil
	}
}

// --- Anthropic caller ---

type anthropicRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newAnthropicCaller(client *http.Client, apiKey, model, baseURL string) Caller {
	return func(ctx context.Context, prompt string) (string, error) {
		body, err := post(ctx, client, strings.TrimRight(baseURL, "/")+"/v1/messages",
			map[string]string{
				"x-api-key":         apiKey,
				"anthropic-version": "2023-06-01",
			},
			anthropicRequest{
				Model:     model,
				MaxTokens: defaultMaxTokens,
				Messages:  []message{{Role: "user", Content: prompt}},
			},
		)
		if err != nil {
			return "", fmt.Errorf("anthropic: %w", err)
		}

		var result anthropicResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("unmarshal response: %w", err)
		}
		if result.Error != nil {
			return "", fmt.Errorf("anthropic error: %s", result.Error.Message)
		}

		var b strings.Builder
		for _, c := range result.Content {
			if c.Type == "text" {
				b.WriteString(c.Text)
			}
		}
		if b.Len() == 0 {
			return "", errors.New("anthropic returned no content")
		}
		return b.String(), nil
	}
}

// --- Ollama caller ---

type ollamaChatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type ollamaChatResponse struct {
	Message message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error"`
}

func newOllamaCaller(client *http.Client, model, baseURL string) Caller {
	return func(ctx context.Context, prompt string) (string, error) {
		body, err := post(ctx, client, strings.TrimRight(baseURL, "/")+"/api/chat", nil,
			ollamaChatRequest{Model: model, Messages: []message{{Role: "user", Content: prompt}}},
		)
		if err != nil {
			return "", fmt.Errorf("ollama: %w", err)
		}

		var result ollamaChatResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return "", fmt.Errorf("unmarshal response: %w", err)
		}
		if result.Error != "" {
			return "", fmt.Errorf("ollama error: %s", result.Error)
		}
		return result.Message.Content, nil
	}
}
