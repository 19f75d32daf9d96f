package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"ReadLater/internal/config"
	"ReadLater/internal/domain"
	"ReadLater/internal/ports"
)

// ChatClient implements ports.Summarizer backed by OpenAI-compatible APIs (OpenRouter, OpenAI).
type ChatClient struct {
	endpoint      string
	model         string
	apiKey        string
	summaryPrompt string
	httpClient    *http.Client
}

var _ ports.Summarizer = (*ChatClient)(nil)

// NewChatClient builds a client from configuration.
func NewChatClient(cfg config.LLMConfig) *ChatClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ChatClient{
		endpoint:      cfg.Endpoint,
		model:         cfg.Model,
		apiKey:        cfg.APIKey,
		summaryPrompt: cfg.SummaryPrompt,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
		Delta   chatMessage `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText sends a single system+user exchange and returns the reply.
func (c *ChatClient) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.send(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("completion error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// StreamSummary streams the summary of content chunk by chunk.
// The sequence ends after the first error; breaking out of the loop closes the connection.
func (c *ChatClient) StreamSummary(ctx context.Context, content string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := c.send(ctx, chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: safePrompt(c.summaryPrompt)},
				{Role: "user", Content: content},
			},
			Stream: true,
		})
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		for chunk, err := range readStream(resp.Body) {
			if !yield(chunk, err) || err != nil {
				return
			}
		}
	}
}

// readStream decodes an OpenAI style server-sent event stream into content deltas.
func readStream(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}

			var event chatResponse
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				yield("", fmt.Errorf("decode stream event: %w", err))
				return
			}
			if event.Error != nil {
				yield("", fmt.Errorf("completion error: %s", event.Error.Message))
				return
			}
			if len(event.Choices) == 0 || event.Choices[0].Delta.Content == "" {
				continue
			}
			if !yield(event.Choices[0].Delta.Content, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", fmt.Errorf("read stream: %w", err))
		}
	}
}

func (c *ChatClient) send(ctx context.Context, payload chatRequest) (*http.Response, error) {
	if c == nil {
		return nil, errors.New("chat client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return nil, errors.New("chat client misconfigured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if payload.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send completion: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, &domain.ExternalHTTPError{
			Service:    "llm",
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	return resp, nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You are a helpful assistant that summarizes web articles."
	}
	return prompt
}
