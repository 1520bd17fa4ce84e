// Package openai implements llm.Completer for the three supported
// providers, all of which expose OpenAI-compatible chat/completions
// endpoints.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"bookdigest/internal/common"
	"bookdigest/internal/llm"
)

// Client calls one provider's chat/completions endpoint with bounded
// retries.
type Client struct {
	cfg    Config
	api    openai.Client
	logger *slog.Logger
}

var _ llm.Completer = (*Client)(nil)

// NewClient resolves provider defaults and credentials. A missing
// credential surfaces ErrAuth here, before any page is processed.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}

	api := openai.NewClient(
		openaiopt.WithAPIKey(cfg.APIKey),
		openaiopt.WithBaseURL(cfg.BaseURL),
		// We run our own retry loop so each attempt can be logged.
		openaiopt.WithMaxRetries(0),
	)

	logger.Info("llm.client.ready",
		"provider", cfg.Provider,
		"base_url", cfg.BaseURL,
		"max_attempts", cfg.MaxAttempts,
	)
	return &Client{cfg: cfg, api: api, logger: logger}, nil
}

// Complete sends one prompt and returns the model's text. Transient
// failures (transport errors, 429, 5xx) are retried MaxAttempts times with
// a fixed delay; exhaustion surfaces ErrModelCall. A credential rejection
// surfaces ErrAuth without retrying.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.complete.start",
		"req_id", rid,
		"provider", c.cfg.Provider,
		"model", req.Model,
		"system_len", len(req.System),
		"user_len", len(req.User),
	)

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: openai.Float(req.Temperature),
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Warn("llm.complete.retry",
				"req_id", rid, "attempt", attempt, "error", lastErr,
			)
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				return "", common.NewAppError("LLM_CANCELED", "completion canceled", ctx.Err())
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		completion, err := c.api.Chat.Completions.New(callCtx, params)
		cancel()

		if err != nil {
			if isAuthError(err) {
				c.logger.Error("llm.complete.auth_error",
					"req_id", rid, "provider", c.cfg.Provider, "error", err,
				)
				return "", common.NewAppError("LLM_AUTH",
					fmt.Sprintf("provider %s rejected credentials", c.cfg.Provider),
					common.ErrAuth)
			}
			if !isRetryable(err) {
				c.logger.Error("llm.complete.error", "req_id", rid, "error", err)
				return "", common.NewAppError("LLM_CALL",
					fmt.Sprintf("provider %s, model %s: %v", c.cfg.Provider, req.Model, err),
					common.ErrModelCall)
			}
			lastErr = err
			continue
		}

		if len(completion.Choices) == 0 {
			lastErr = fmt.Errorf("no choices in response")
			continue
		}
		content := strings.TrimSpace(completion.Choices[0].Message.Content)

		c.logger.Info("llm.complete.ok",
			"req_id", rid,
			"model", req.Model,
			"attempt", attempt,
			"content_len", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return content, nil
	}

	c.logger.Error("llm.complete.exhausted",
		"req_id", rid,
		"provider", c.cfg.Provider,
		"model", req.Model,
		"attempts", c.cfg.MaxAttempts,
		"error", lastErr,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return "", common.NewAppError("LLM_EXHAUSTED",
		fmt.Sprintf("provider %s, model %s failed after %d attempts: %v",
			c.cfg.Provider, req.Model, c.cfg.MaxAttempts, lastErr),
		common.ErrModelCall)
}

func isAuthError(err error) bool {
	var apiErr *openai.Error
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == 401 || apiErr.StatusCode == 403)
}

// isRetryable reports whether an attempt is worth repeating: transport
// failures, rate limits, and server-side errors. Client-side 4xx (other
// than 429) means the request itself is bad and retrying cannot help.
func isRetryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	// No API status means the request never got a response.
	return true
}
