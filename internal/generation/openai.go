package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hirekitlabs/hirekit-backend/pkg/config"
	"github.com/hirekitlabs/hirekit-backend/pkg/enums"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
	"github.com/hirekitlabs/hirekit-backend/pkg/types"
)

const (
	chatCompletionsPath         = "/chat/completions"
	errorBodyReadLimit    int64 = 2048
	defaultRetryBaseDelay       = 500 * time.Millisecond
)

var errAPIKeyRequired = errors.New("openai api key is required")

// OpenAIGenerator implements Generator against the OpenAI chat completions
// API. Responses are requested in JSON mode and decoded straight into the
// kit content types.
type OpenAIGenerator struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxAttempts int
	retryDelay  time.Duration
}

// Option configures optional generator behavior.
type Option func(*OpenAIGenerator)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *OpenAIGenerator) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// WithRetryBaseDelay overrides the backoff base between retry attempts.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(g *OpenAIGenerator) {
		if delay > 0 {
			g.retryDelay = delay
		}
	}
}

// NewOpenAIGenerator builds the generator from config.
func NewOpenAIGenerator(cfg config.OpenAIConfig, opts ...Option) (*OpenAIGenerator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("openai base url is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("openai model is required")
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	generator := &OpenAIGenerator{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		maxAttempts: maxAttempts,
		retryDelay:  defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(generator)
		}
	}
	return generator, nil
}

// GenerateKit produces all nine documents in one completion.
func (g *OpenAIGenerator) GenerateKit(ctx context.Context, intake *types.Intake) (*types.KitContent, error) {
	if g == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "generator not configured")
	}
	prompt, err := BuildKitPrompt(intake)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "build kit prompt")
	}

	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var content types.KitContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode generated kit")
	}
	if !content.IsComplete() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "generated kit is missing sections")
	}
	return &content, nil
}

// GenerateSection produces one document for the given section key.
func (g *OpenAIGenerator) GenerateSection(ctx context.Context, intake *types.Intake, key enums.SectionKey) (*types.SectionDoc, error) {
	if g == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "generator not configured")
	}
	prompt, err := BuildSectionPrompt(intake, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "build section prompt")
	}

	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var doc types.SectionDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode generated section")
	}
	if strings.TrimSpace(doc.Title) == "" || strings.TrimSpace(doc.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "generated section is empty")
	}
	return &doc, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Temperature float32 `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// complete runs one chat completion, retrying transient failures up to the
// configured attempt budget.
func (g *OpenAIGenerator) complete(ctx context.Context, prompt string) (string, error) {
	request := chatCompletionRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.4,
	}
	request.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(request)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal completion request")
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, g.retryDelay*time.Duration(attempt-1)); err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "completion canceled")
			}
		}

		content, retryable, err := g.completeOnce(ctx, payload)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", lastErr
}

func (g *OpenAIGenerator) completeOnce(ctx context.Context, payload []byte) (string, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+chatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build completion request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", true, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute completion request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
		return "", retryable, pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"completion request failed",
		)
	}

	var apiResp chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode completion response")
	}
	if len(apiResp.Choices) == 0 {
		return "", false, pkgerrors.New(pkgerrors.CodeDependency, "completion returned no choices")
	}
	content := strings.TrimSpace(apiResp.Choices[0].Message.Content)
	if content == "" {
		return "", false, pkgerrors.New(pkgerrors.CodeDependency, "completion returned empty content")
	}
	return content, false, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
