package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookdigest/internal/common"
	"bookdigest/internal/llm"
)

const completionBody = `{
	"id": "chatcmpl-test",
	"object": "chat.completion",
	"model": "test-model",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "  CONTENT  "}, "finish_reason": "stop"}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(Config{
		Provider:    ProviderOllama,
		BaseURL:     server.URL + "/v1",
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
		Timeout:     5 * time.Second,
	}, nil)
	require.NoError(t, err)
	return c
}

func testRequest() llm.CompletionRequest {
	return llm.CompletionRequest{Model: "test-model", System: "sys", User: "usr"}
}

func TestCompleteTrimsContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody))
	})

	out, err := c.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "CONTENT", out)
}

func TestCompleteRetriesTransientFailures(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody))
	})

	out, err := c.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "CONTENT", out)
	assert.Equal(t, 3, calls)
}

func TestCompleteExhaustsBoundedRetries(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	})

	_, err := c.Complete(context.Background(), testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrModelCall)
	assert.Equal(t, 3, calls)
}

func TestCompleteRejectedCredentialsAreNotRetried(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error": {"message": "bad key"}}`, http.StatusUnauthorized)
	})

	_, err := c.Complete(context.Background(), testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAuth)
	assert.Equal(t, 1, calls)
}

func TestCompleteBadRequestIsNotRetried(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error": {"message": "model not found"}}`, http.StatusNotFound)
	})

	_, err := c.Complete(context.Background(), testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrModelCall)
	assert.Equal(t, 1, calls)
}
