// Package oracle wraps the external boolean-question service used by
// LLM-class rule conditions.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/siftlab/companysift/config"
	"go.uber.org/zap"
)

const promptTemplate = `Context:
%s

Question: %s
Answer with "true" or "false" only.
`

// Client asks single-turn yes/no questions against an OpenRouter
// chat-completions endpoint.
//
// The failure mode is always "false, not true": transport errors,
// non-200 responses, malformed bodies, and ambiguous answers all yield
// false. An oracle outage must never count as a match.
type Client struct {
	cfg        config.OracleConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new oracle client
func NewClient(cfg config.OracleConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Ask presents the context and question to the model and returns true
// only when the first answer, trimmed and lowercased, is the literal
// "true".
func (c *Client) Ask(ctx context.Context, question, contextText string) bool {
	prompt := fmt.Sprintf(promptTemplate, contextText, question)

	reqBody, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{
				Role:    "user",
				Content: []contentPart{{Type: "text", Text: prompt}},
			},
		},
	})
	if err != nil {
		c.logger.Error("failed to marshal oracle request", zap.Error(err))
		return false
	}

	respBody, ok := c.post(ctx, reqBody)
	if !ok {
		return false
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		c.logger.Warn("failed to unmarshal oracle response", zap.Error(err))
		return false
	}

	if len(resp.Choices) == 0 {
		return false
	}

	answer := resp.Choices[0].Message.Text
	if answer == "" {
		answer = resp.Choices[0].Message.Content
	}

	return strings.ToLower(strings.TrimSpace(answer)) == "true"
}

// post executes the request, retrying transport errors and 5xx
// responses up to MaxRetries times
func (c *Client) post(ctx context.Context, body []byte) ([]byte, bool) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				c.logger.Warn("oracle request cancelled", zap.Error(ctx.Err()))
				return nil, false
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			c.logger.Error("failed to create oracle request", zap.Error(err))
			return nil, false
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("oracle returned status %d", resp.StatusCode)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			c.logger.Warn("failed to read oracle response", zap.Error(err))
			return nil, false
		}

		if resp.StatusCode != http.StatusOK {
			c.logger.Warn("oracle request rejected",
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", respBody))
			return nil, false
		}

		return respBody, true
	}

	c.logger.Warn("oracle request failed", zap.Error(lastErr))
	return nil, false
}

// Wire types for the chat-completions API

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatResponse struct {
	Choices []choice `json:"choices"`
}

type choice struct {
	Message answerMessage `json:"message"`
}

type answerMessage struct {
	Text    string `json:"text"`
	Content string `json:"content"`
}
