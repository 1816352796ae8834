// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package anthropic implements the llm.Provider interface over the Anthropic
// Messages API with native tool_use.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/weft/internal/log"
	"github.com/teradata-labs/weft/pkg/llm"
	"github.com/teradata-labs/weft/pkg/tools"
)

const (
	// DefaultModel is the default Claude model
	DefaultModel = "claude-sonnet-4-5-20250929"
	// DefaultEndpoint is the default Anthropic API endpoint
	DefaultEndpoint = "https://api.anthropic.com/v1/messages"
	// DefaultMaxTokens is the default maximum tokens per request
	DefaultMaxTokens = 4096
	// DefaultTemperature is the default LLM temperature
	DefaultTemperature = 1.0
	// DefaultTimeout is the default HTTP timeout
	DefaultTimeout = 120 * time.Second

	apiVersion  = "2023-06-01"
	maxAttempts = 3
)

// Config holds configuration for the Anthropic client.
type Config struct {
	APIKey      string
	Model       string // Default: claude-sonnet-4-5-20250929
	Endpoint    string // Default: https://api.anthropic.com/v1/messages
	Timeout     time.Duration
	MaxTokens   int     // Default: 4096
	Temperature float64 // Default: 1.0
}

// Client implements llm.Provider for Anthropic's Claude API.
type Client struct {
	apiKey      string
	model       string
	endpoint    string
	httpClient  *http.Client
	maxTokens   int
	temperature float64
}

// NewClient creates a new Anthropic client.
func NewClient(config Config) *Client {
	if config.Model == "" {
		if envModel := os.Getenv("ANTHROPIC_DEFAULT_MODEL"); envModel != "" {
			config.Model = envModel
		} else {
			config.Model = DefaultModel
		}
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	return &Client{
		apiKey:      config.APIKey,
		model:       config.Model,
		endpoint:    config.Endpoint,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		httpClient:  &http.Client{Timeout: config.Timeout},
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return "anthropic" }

// Model returns the model identifier.
func (c *Client) Model() string { return c.model }

// Chat sends the conversation and tool definitions to Claude.
func (c *Client) Chat(ctx context.Context, messages []llm.Message, toolset []tools.Tool) (*llm.Response, error) {
	system, apiMessages := convertMessages(messages)
	apiTools, err := convertTools(toolset)
	if err != nil {
		return nil, fmt.Errorf("convert tools: %w", err)
	}

	req := &MessagesRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		System:      system,
		Tools:       apiTools,
		Messages:    apiMessages,
	}

	resp, err := c.callAPI(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}
	return convertResponse(resp), nil
}

// convertMessages converts conversation turns to API format. System messages
// are extracted and combined, as the Messages API requires them in a separate
// "system" field rather than the messages array.
func convertMessages(messages []llm.Message) (string, []Message) {
	var (
		systemPrompts []string
		apiMessages   []Message
	)
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if msg.Content != "" {
				systemPrompts = append(systemPrompts, msg.Content)
			}

		case "user":
			apiMessages = append(apiMessages, Message{
				Role:    "user",
				Content: []ContentBlock{{Type: "text", Text: msg.Content}},
			})

		case "assistant":
			var content []ContentBlock
			if msg.Content != "" {
				content = append(content, ContentBlock{Type: "text", Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				input := tc.Input
				if input == nil {
					input = map[string]interface{}{} // API requires non-null input for tool_use blocks
				}
				content = append(content, ContentBlock{
					Type:  "tool_use",
					ID:    tc.ID,
					Name:  tc.Name,
					Input: input,
				})
			}
			if len(content) > 0 {
				apiMessages = append(apiMessages, Message{Role: "assistant", Content: content})
			}

		case "tool":
			apiMessages = append(apiMessages, Message{
				Role: "user",
				Content: []ContentBlock{{
					Type:      "tool_result",
					ToolUseID: msg.ToolUseID,
					Content:   msg.Content,
				}},
			})
		}
	}
	return strings.Join(systemPrompts, "\n\n"), apiMessages
}

// convertTools converts tool definitions to API format.
func convertTools(toolset []tools.Tool) ([]Tool, error) {
	var apiTools []Tool
	for _, tool := range toolset {
		schema, err := tool.InputSchema().ToJSON()
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", tool.Name(), err)
		}
		apiTools = append(apiTools, Tool{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: schema,
		})
	}
	return apiTools, nil
}

// convertResponse normalizes the API response.
func convertResponse(resp *MessagesResponse) *llm.Response {
	out := &llm.Response{
		StopReason: resp.StopReason,
		Usage: llm.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}
	var texts []string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			texts = append(texts, block.Text)
		case "tool_use":
			input, _ := block.Input.(map[string]interface{})
			out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Input: input,
			})
		}
	}
	out.Content = strings.Join(texts, "\n")
	return out
}

// callAPI posts the request, retrying on 429 and 5xx with linear backoff.
func (c *Client) callAPI(ctx context.Context, req *MessagesRequest) (*MessagesResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-api-key", c.apiKey)
		httpReq.Header.Set("anthropic-version", apiVersion)

		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}
		respBody, err := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if httpResp.StatusCode == http.StatusOK {
			var resp MessagesResponse
			if err := json.Unmarshal(respBody, &resp); err != nil {
				return nil, fmt.Errorf("unmarshal response: %w", err)
			}
			return &resp, nil
		}

		var apiErr ErrorResponse
		_ = json.Unmarshal(respBody, &apiErr)
		lastErr = fmt.Errorf("anthropic API %d: %s", httpResp.StatusCode, apiErr.Error.Message)

		// Only rate limits and server faults are worth retrying.
		if httpResp.StatusCode != http.StatusTooManyRequests && httpResp.StatusCode < 500 {
			return nil, lastErr
		}
		log.Warn("anthropic API retry",
			zap.Int("attempt", attempt),
			zap.Int("status", httpResp.StatusCode))
	}
	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}
