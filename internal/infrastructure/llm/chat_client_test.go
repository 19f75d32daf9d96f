package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReadLater/internal/config"
	"ReadLater/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ChatClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewChatClient(config.LLMConfig{Endpoint: srv.URL, Model: "test-model", APIKey: "sk-test"})
}

func TestGenerateText(t *testing.T) {
	t.Parallel()

	var got chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"go, testing"}}]}`))
	})

	text, err := client.GenerateText(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "go, testing", text)
	assert.Equal(t, "test-model", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "system"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "user"}, got.Messages[1])
}

func TestGenerateTextHTTPError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	})

	_, err := client.GenerateText(context.Background(), "s", "u")
	var httpErr *domain.ExternalHTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Equal(t, "slow down", httpErr.Body)
}

func TestStreamSummary(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(strings.Join([]string{
			`: keep-alive`,
			`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
			`data: {"choices":[{"delta":{"content":"Hello"}}]}`,
			``,
			`data: {"choices":[{"delta":{"content":", world"}}]}`,
			`data: [DONE]`,
			`data: {"choices":[{"delta":{"content":"ignored"}}]}`,
		}, "\n")))
	})

	var chunks []string
	for chunk, err := range client.StreamSummary(context.Background(), "content") {
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}
	assert.Equal(t, []string{"Hello", ", world"}, chunks)
}

func TestStreamSummaryStopsOnBreak(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\ndata: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n"))
	})

	var chunks []string
	for chunk, err := range client.StreamSummary(context.Background(), "content") {
		require.NoError(t, err)
		chunks = append(chunks, chunk)
		break
	}
	assert.Equal(t, []string{"a"}, chunks)
}

func TestStreamSummaryMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewChatClient(config.LLMConfig{Endpoint: "http://localhost"})
	for _, err := range client.StreamSummary(context.Background(), "x") {
		require.Error(t, err)
		assert.Contains(t, err.Error(), "misconfigured")
	}
}
