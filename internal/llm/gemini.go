// Package llm implements the language-model execution engine on the Gemini
// REST API. Each agent role carries its own model, temperature, and output
// cap; the engine applies a bounded per-call timeout so a hung provider call
// surfaces as a pipeline failure instead of blocking the request forever.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"askpilot/internal/core"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// minRequestSpacing keeps request bursts under provider rate limits.
const minRequestSpacing = 100 * time.Millisecond

// GeminiEngine implements core.LLMClient against the Gemini API.
type GeminiEngine struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// Config holds engine construction parameters.
type Config struct {
	APIKey  string
	BaseURL string
	// Timeout bounds a single completion call. Zero means 2 minutes.
	Timeout time.Duration
}

// NewGeminiEngine creates a Gemini-backed execution engine.
func NewGeminiEngine(cfg Config, logger *zap.Logger) (*GeminiEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GeminiEngine{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// Complete sends a prompt under the given role configuration and returns the
// model's text output. A single call per invocation; rate-limit and transport
// failures are returned to the caller, not retried.
func (e *GeminiEngine) Complete(ctx context.Context, role core.RoleConfig, prompt string) (string, error) {
	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	e.logger.Debug("LLM complete",
		zap.String("role", role.Name),
		zap.String("model", role.Model),
		zap.Int("prompt_len", len(prompt)))

	// Rate limiting
	e.mu.Lock()
	elapsed := time.Since(e.lastRequest)
	if elapsed < minRequestSpacing {
		time.Sleep(minRequestSpacing - elapsed)
	}
	e.lastRequest = time.Now()
	e.mu.Unlock()

	reqBody := GeminiRequest{
		Contents: []GeminiContent{
			{
				Role:  "user",
				Parts: []GeminiPart{{Text: prompt}},
			},
		},
		GenerationConfig: GeminiGenerationConfig{
			Temperature:     role.Temperature,
			MaxOutputTokens: role.MaxOutputTokens,
		},
	}
	if role.WebSearch {
		reqBody.Tools = []GeminiTool{{GoogleSearch: &GeminiGoogleSearch{}}}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", e.baseURL, role.Model, e.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		e.logger.Error("LLM request failed",
			zap.String("role", role.Name),
			zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if geminiResp.Error != nil {
		return "", fmt.Errorf("API error: %s", geminiResp.Error.Message)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no completion returned")
	}

	var result strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		result.WriteString(part.Text)
	}

	response := strings.TrimSpace(result.String())

	e.logger.Debug("LLM complete done",
		zap.String("role", role.Name),
		zap.Duration("elapsed", time.Since(startTime)),
		zap.Int("response_len", len(response)),
		zap.Int("total_tokens", geminiResp.UsageMetadata.TotalTokenCount))

	return response, nil
}
