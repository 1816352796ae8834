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

// Package tools defines the executable tool contract for the weft agent.
// A tool encapsulates a single capability the LLM may invoke: discovering the
// warehouse schema, running a query, or executing an analysis script. Every
// tool's Execute is total with respect to domain failures — a bad query or a
// crashing script comes back as a failed Result, never as a Go error.
package tools

import (
	"context"
	"encoding/json"
)

// Tool defines the interface for executable tools in the agent loop.
type Tool interface {
	// Name returns the tool's unique identifier
	Name() string

	// Description returns a human-readable description for LLM context
	Description() string

	// InputSchema returns the JSON Schema for tool parameters
	InputSchema() *JSONSchema

	// Execute runs the tool with given parameters
	Execute(ctx context.Context, params map[string]interface{}) (*Result, error)
}

// Result represents the outcome of tool execution.
type Result struct {
	// Success indicates if the tool executed successfully
	Success bool

	// Data contains the result payload (format varies by tool).
	// It is JSON-serialized before re-entering the conversation.
	Data map[string]interface{}

	// Error contains error information if execution failed
	Error *Error

	// ExecutionTime in milliseconds
	ExecutionTimeMs int64
}

// Error represents a tool execution error with structured information.
type Error struct {
	// Code is a machine-readable error code
	Code string

	// Message is a human-readable error message
	Message string

	// Details provides additional error context (e.g. a stack trace)
	Details map[string]interface{}
}

// Failure builds a failed Result with the given code and message.
func Failure(code, message string) *Result {
	return &Result{
		Success: false,
		Error:   &Error{Code: code, Message: message},
	}
}

// Payload serializes the result into the mapping sent back to the model.
// Failed results carry success:false plus the error message, mirroring
// successful payloads so the model can read both shapes uniformly.
func (r *Result) Payload() map[string]interface{} {
	if r.Success {
		payload := make(map[string]interface{}, len(r.Data)+1)
		payload["success"] = true
		for k, v := range r.Data {
			payload[k] = v
		}
		return payload
	}
	payload := map[string]interface{}{
		"success": false,
		"error":   "",
	}
	if r.Error != nil {
		payload["error"] = r.Error.Message
		for k, v := range r.Error.Details {
			payload[k] = v
		}
	}
	return payload
}

// JSONSchema represents a JSON Schema for tool parameters.
type JSONSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Items       *JSONSchema            `json:"items,omitempty"`
	Enum        []interface{}          `json:"enum,omitempty"`
	Default     interface{}            `json:"default,omitempty"`
}

// ToJSON converts the schema to JSON bytes.
func (s *JSONSchema) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// NewObjectSchema creates a new object schema with the given properties.
func NewObjectSchema(description string, properties map[string]*JSONSchema, required []string) *JSONSchema {
	if properties == nil {
		properties = make(map[string]*JSONSchema)
	}
	return &JSONSchema{
		Type:        "object",
		Description: description,
		Properties:  properties,
		Required:    required,
	}
}

// NewStringSchema creates a new string schema.
func NewStringSchema(description string) *JSONSchema {
	return &JSONSchema{
		Type:        "string",
		Description: description,
	}
}

// StringParam extracts a required string parameter from tool input.
// Returns the value and true when present and non-empty.
func StringParam(params map[string]interface{}, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
