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

// Package llm contains the provider-agnostic conversation types and the
// Provider interface the agent loop drives. Provider implementations live in
// subpackages (currently Anthropic).
package llm

import (
	"context"

	"github.com/teradata-labs/weft/pkg/tools"
)

// Stop reasons every provider normalizes to.
const (
	// StopEndTurn means the model produced its final answer
	StopEndTurn = "end_turn"

	// StopToolUse means the model requested one or more tool invocations
	StopToolUse = "tool_use"
)

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	// ID is the opaque call identifier, echoed back with the result
	ID string

	// Name is the tool name
	Name string

	// Input contains the tool arguments
	Input map[string]interface{}
}

// Message is a single turn in the conversation sent to the model.
type Message struct {
	// Role is the message sender (system, user, assistant, tool)
	Role string

	// Content is the message text
	Content string

	// ToolCalls contains tool invocations (role assistant)
	ToolCalls []ToolCall

	// ToolUseID links a tool result back to its tool_use block (role tool)
	ToolUseID string
}

// Usage tracks token consumption for one round trip.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is a normalized model response.
type Response struct {
	// Content is the concatenated text segments
	Content string

	// ToolCalls contains requested tool executions, in block order
	ToolCalls []ToolCall

	// StopReason is one of the Stop* constants, or the provider-native
	// reason when it maps to neither
	StopReason string

	// Usage tracks token usage
	Usage Usage
}

// Provider is the model round-trip interface. One Chat call is one
// AWAITING_MODEL step of the agent loop.
type Provider interface {
	// Chat sends the conversation and tool definitions to the model
	Chat(ctx context.Context, messages []Message, toolset []tools.Tool) (*Response, error)

	// Name returns the provider name
	Name() string

	// Model returns the model identifier
	Model() string
}
