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

// Package agent drives the bounded tool-use loop: it feeds the conversation
// to the model, dispatches the tool calls the model requests, keeps figure
// payloads out of the model's context, and persists the durable turns of
// each session.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teradata-labs/weft/internal/log"
	"github.com/teradata-labs/weft/pkg/history"
	"github.com/teradata-labs/weft/pkg/llm"
	"github.com/teradata-labs/weft/pkg/tools"
)

const (
	// DefaultMaxIterations bounds the number of model round trips per request.
	DefaultMaxIterations = 10

	// DefaultMaxAssistantLen caps the persisted length of a final answer.
	DefaultMaxAssistantLen = 8000
)

// ErrIterationLimit is returned in Response.Error when the model keeps
// requesting tools past the round-trip cap.
var ErrIterationLimit = errors.New("iteration limit exceeded")

// Config tunes the agent loop.
type Config struct {
	// MaxIterations is the model round-trip cap; zero means the default.
	MaxIterations int

	// HistoryWindow is how many persisted turns are replayed into the
	// conversation; zero means the history store's window size.
	HistoryWindow int

	// MaxAssistantLen caps the persisted final answer; zero means the
	// default, negative means no cap.
	MaxAssistantLen int
}

// ToolCallRecord logs one dispatched tool call for the caller.
type ToolCallRecord struct {
	Tool      string                 `json:"tool"`
	Input     map[string]interface{} `json:"input"`
	Iteration int                    `json:"iteration"`
}

// Response is the outcome of one Analyze request.
type Response struct {
	Success    bool             `json:"success"`
	SessionID  string           `json:"session_id"`
	TextOutput string           `json:"text_output"`
	Plots      []string         `json:"plots,omitempty"`
	ToolCalls  []ToolCallRecord `json:"tool_calls,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Agent runs analysis requests through the tool-use loop.
type Agent struct {
	provider   llm.Provider
	registry   *tools.Registry
	dispatcher *tools.Dispatcher
	store      *history.Store
	config     Config
}

// New creates an agent. store may be nil, in which case sessions are not
// persisted and every request starts from an empty conversation.
func New(provider llm.Provider, registry *tools.Registry, store *history.Store, config Config) *Agent {
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultMaxIterations
	}
	if config.MaxAssistantLen == 0 {
		config.MaxAssistantLen = DefaultMaxAssistantLen
	}
	return &Agent{
		provider:   provider,
		registry:   registry,
		dispatcher: tools.NewDispatcher(registry),
		store:      store,
		config:     config,
	}
}

// Analyze answers one user request. A request is a terminating state machine:
// at most MaxIterations model round trips, each either producing the final
// answer or a batch of tool calls that are dispatched and appended to the
// conversation. Tool failures are surfaced to the model as data, never
// escalated; only an unknown tool name or a provider transport failure aborts
// the request.
func (a *Agent) Analyze(ctx context.Context, sessionID, question string) *Response {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	question = sanitize(question)

	resp := &Response{SessionID: sessionID}
	start := time.Now()

	messages, err := a.buildConversation(ctx, sessionID, question)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}

	if a.store != nil {
		if err := a.store.SaveUserTurn(ctx, sessionID, question); err != nil {
			log.Warn("save user turn failed", zap.String("session", sessionID), zap.Error(err))
		}
	}

	toolset := a.registry.List()

	for iteration := 1; iteration <= a.config.MaxIterations; iteration++ {
		model, err := a.provider.Chat(ctx, messages, toolset)
		if err != nil {
			resp.Error = fmt.Sprintf("model request failed: %v", err)
			return resp
		}
		log.Debug("model turn",
			zap.String("session", sessionID),
			zap.Int("iteration", iteration),
			zap.String("stop_reason", model.StopReason),
			zap.Int("tool_calls", len(model.ToolCalls)),
			zap.Int("input_tokens", model.Usage.InputTokens),
			zap.Int("output_tokens", model.Usage.OutputTokens))

		// Tool calls take precedence over the stop reason: a turn carrying
		// tool_use blocks is a dispatching turn regardless of how it stopped.
		if len(model.ToolCalls) > 0 {
			messages = append(messages, llm.Message{
				Role:      "assistant",
				Content:   model.Content,
				ToolCalls: model.ToolCalls,
			})
			for _, call := range model.ToolCalls {
				toolMsg, plots, err := a.dispatch(ctx, call, iteration, resp)
				if err != nil {
					resp.Error = err.Error()
					return resp
				}
				resp.Plots = append(resp.Plots, plots...)
				messages = append(messages, toolMsg)
			}
			continue
		}

		if model.StopReason == llm.StopEndTurn {
			answer := sanitize(model.Content)
			if a.store != nil {
				if err := a.store.SaveAssistantTurn(ctx, sessionID, answer, a.config.MaxAssistantLen); err != nil {
					log.Warn("save assistant turn failed", zap.String("session", sessionID), zap.Error(err))
				}
			}
			resp.Success = true
			resp.TextOutput = answer
			log.Info("request answered",
				zap.String("session", sessionID),
				zap.Int("iterations", iteration),
				zap.Int("plots", len(resp.Plots)),
				zap.Duration("elapsed", time.Since(start)))
			return resp
		}

		resp.Error = fmt.Sprintf("unexpected stop reason: %s", model.StopReason)
		return resp
	}

	// The model never reached a final answer; figures produced along the way
	// are still delivered.
	resp.Error = ErrIterationLimit.Error()
	log.Warn("iteration limit exceeded",
		zap.String("session", sessionID),
		zap.Int("max_iterations", a.config.MaxIterations))
	return resp
}

// buildConversation assembles system prompt, replayed history, and the new
// question.
func (a *Agent) buildConversation(ctx context.Context, sessionID, question string) ([]llm.Message, error) {
	messages := []llm.Message{{Role: "system", Content: systemPrompt}}

	if a.store != nil {
		window, err := a.store.GetWindow(ctx, sessionID, a.config.HistoryWindow)
		if err != nil {
			return nil, fmt.Errorf("load session history: %w", err)
		}
		for _, turn := range window {
			messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
		}
	}

	return append(messages, llm.Message{Role: "user", Content: question}), nil
}

// dispatch runs one tool call and converts its result into the tool message
// the model will see. Figure payloads are stripped from that message and
// returned separately.
func (a *Agent) dispatch(ctx context.Context, call llm.ToolCall, iteration int, resp *Response) (llm.Message, []string, error) {
	resp.ToolCalls = append(resp.ToolCalls, ToolCallRecord{
		Tool:      call.Name,
		Input:     call.Input,
		Iteration: iteration,
	})

	result, err := a.dispatcher.Dispatch(ctx, call.Name, call.Input)
	if err != nil {
		return llm.Message{}, nil, err
	}

	visible, plots := Trim(call.Name, result.Payload())
	body, err := json.Marshal(visible)
	if err != nil {
		// Tool payloads are built from JSON-decoded values plus our own
		// fields; a marshal failure here means a tool put something
		// unserializable in Data.
		return llm.Message{}, nil, fmt.Errorf("encode %s result: %w", call.Name, err)
	}

	return llm.Message{
		Role:      "tool",
		ToolUseID: call.ID,
		Content:   sanitize(string(body)),
	}, plots, nil
}

// sanitize drops invalid UTF-8 sequences that would break JSON encoding of
// API requests.
func sanitize(s string) string {
	return strings.ToValidUTF8(s, "")
}
