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
package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/weft/pkg/llm"
)

func TestConvertMessages(t *testing.T) {
	messages := []llm.Message{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "what happened to revenue?"},
		{Role: "assistant", Content: "let me check", ToolCalls: []llm.ToolCall{
			{ID: "t1", Name: "run_query", Input: map[string]interface{}{"sql": "SELECT 1"}},
		}},
		{Role: "tool", ToolUseID: "t1", Content: `{"success":true}`},
	}

	system, apiMessages := convertMessages(messages)

	assert.Equal(t, "be helpful", system)
	require.Len(t, apiMessages, 3)

	assert.Equal(t, "user", apiMessages[0].Role)
	assert.Equal(t, "text", apiMessages[0].Content[0].Type)

	require.Len(t, apiMessages[1].Content, 2)
	assert.Equal(t, "text", apiMessages[1].Content[0].Type)
	assert.Equal(t, "tool_use", apiMessages[1].Content[1].Type)
	assert.Equal(t, "t1", apiMessages[1].Content[1].ID)

	// Tool results travel as user messages with a tool_result block.
	assert.Equal(t, "user", apiMessages[2].Role)
	assert.Equal(t, "tool_result", apiMessages[2].Content[0].Type)
	assert.Equal(t, "t1", apiMessages[2].Content[0].ToolUseID)
}

func TestConvertMessagesToolUseInputNeverNull(t *testing.T) {
	_, apiMessages := convertMessages([]llm.Message{
		{Role: "assistant", ToolCalls: []llm.ToolCall{{ID: "t1", Name: "discover_schema"}}},
	})
	require.Len(t, apiMessages, 1)
	assert.NotNil(t, apiMessages[0].Content[0].Input)
}

func TestConvertResponse(t *testing.T) {
	resp := convertResponse(&MessagesResponse{
		StopReason: "tool_use",
		Content: []ContentBlock{
			{Type: "text", Text: "running a query"},
			{Type: "tool_use", ID: "t9", Name: "run_query", Input: map[string]interface{}{"sql": "SELECT 1"}},
		},
		Usage: Usage{InputTokens: 10, OutputTokens: 20},
	})

	assert.Equal(t, "running a query", resp.Content)
	assert.Equal(t, "tool_use", resp.StopReason)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "t9", resp.ToolCalls[0].ID)
	assert.Equal(t, 10, resp.Usage.InputTokens)
}

func TestChatRetriesServerFaults(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		if attempts < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(MessagesResponse{
			StopReason: "end_turn",
			Content:    []ContentBlock{{Type: "text", Text: "done"}},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", Endpoint: srv.URL})
	resp, err := c.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, "done", resp.Content)
}

func TestChatClientFaultNotRetried(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", Endpoint: srv.URL})
	_, err := c.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{APIKey: "k"})
	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, "anthropic", c.Name())
}
