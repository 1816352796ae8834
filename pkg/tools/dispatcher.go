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
package tools

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/weft/internal/log"
)

// Dispatcher executes tools by name with timing and failure containment.
//
// Dispatch returns a non-nil error only for an unknown tool name; that is the
// one condition the agent loop treats as fatal for the whole request. Every
// other failure mode — executor errors, panics inside a tool, domain
// rejections — is folded into a failed Result so the model can read it and
// self-correct on its next turn.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a new tool dispatcher.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch executes the named tool with the given parameters.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, params map[string]interface{}) (result *Result, err error) {
	tool, ok := d.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("tool panicked",
				zap.String("tool", name),
				zap.Any("panic", r))
			result = Failure("tool_panic", fmt.Sprintf("tool %s panicked: %v", name, r))
			result.ExecutionTimeMs = time.Since(start).Milliseconds()
			err = nil
		}
	}()

	res, execErr := tool.Execute(ctx, params)
	elapsed := time.Since(start).Milliseconds()

	if execErr != nil {
		// Tools are expected to encode domain failures in the Result; a Go
		// error here is an executor bug, still contained as data.
		res = Failure("execution_error", execErr.Error())
	}
	if res == nil {
		res = Failure("empty_result", fmt.Sprintf("tool %s returned no result", name))
	}
	res.ExecutionTimeMs = elapsed

	log.Debug("tool dispatched",
		zap.String("tool", name),
		zap.Bool("success", res.Success),
		zap.Int64("elapsed_ms", elapsed))
	return res, nil
}
