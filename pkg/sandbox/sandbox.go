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

// Package sandbox executes model-authored Starlark analysis scripts against a
// materialized query result. The script sees a fixed, enumerated capability
// set — the data frame, math/json/stats modules, and the plot module — and
// nothing else: no file system, no network, no process access. Execution is
// totally contained: whatever the script does, Execute returns a Result and
// never raises.
//
// This is a trust boundary, not a security boundary. Scripts share the host
// process; genuine isolation (process or VM level) is a hardening step this
// package does not provide.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"

	starjson "go.starlark.net/lib/json"
	starmath "go.starlark.net/lib/math"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/teradata-labs/weft/pkg/frame"
)

// DefaultMaxSteps bounds Starlark execution so a runaway loop cannot pin the
// worker forever.
const DefaultMaxSteps = 100_000_000

// Result is the uniform envelope for one sandbox invocation.
type Result struct {
	// Success indicates whether the script ran to completion
	Success bool

	// Output is everything the script printed, in order
	Output string

	// ResultValue is the rendered `result` slot, nil when the script left it
	// unset or set it to None
	ResultValue *string

	// Plots holds every figure created during execution, rendered to PNG and
	// encoded as data:image/png;base64,... URIs in creation order
	Plots []string

	// Error holds the failure detail (error type, message, backtrace) when
	// Success is false
	Error string
}

// Sandbox runs analysis scripts. It is stateless across invocations: the
// execution namespace and the figure registry are created per call and torn
// down unconditionally afterward.
type Sandbox struct {
	maxSteps uint64
}

// New creates a sandbox with the default execution-step bound.
func New() *Sandbox {
	return &Sandbox{maxSteps: DefaultMaxSteps}
}

// NewWithMaxSteps creates a sandbox with a custom execution-step bound.
func NewWithMaxSteps(maxSteps uint64) *Sandbox {
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Sandbox{maxSteps: maxSteps}
}

// Execute loads the Parquet artifact, binds it as `df`, runs the script, and
// harvests prints, the result slot, and every created figure. All failure
// modes — unreadable handle, syntax error, runtime error, step exhaustion —
// come back as a Result with Success=false.
func (s *Sandbox) Execute(ctx context.Context, code, parquetPath string) *Result {
	df, err := frame.ReadParquet(ctx, parquetPath)
	if err != nil {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("failed to load parquet artifact: %v", err),
		}
	}

	var output strings.Builder
	figures := newFigureRegistry()
	// Teardown runs regardless of outcome so no figure or namespace state
	// leaks into the next invocation.
	defer figures.clear()

	thread := &starlark.Thread{
		Name: "analysis",
		Print: func(_ *starlark.Thread, msg string) {
			output.WriteString(msg)
			output.WriteByte('\n')
		},
	}
	thread.SetLocal(figureRegistryKey, figures)
	thread.SetMaxExecutionSteps(s.maxSteps)

	predeclared := starlark.StringDict{
		"df":    newFrameValue(df),
		"math":  starmath.Module,
		"json":  starjson.Module,
		"stats": statsModule,
		"plot":  plotModule,
	}

	opts := &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}

	globals, execErr := starlark.ExecFileOptions(opts, thread, "analysis.star", code, predeclared)
	captured := output.String()

	if execErr != nil {
		return &Result{
			Success: false,
			Output:  captured,
			Error:   formatExecError(execErr),
		}
	}

	plots := figures.harvest()

	return &Result{
		Success:     true,
		Output:      captured,
		ResultValue: renderResultSlot(globals),
		Plots:       plots,
	}
}

// renderResultSlot extracts and stringifies the script's `result` global.
// A frame renders as a Markdown table; anything else is stringified.
func renderResultSlot(globals starlark.StringDict) *string {
	v, ok := globals["result"]
	if !ok || v == starlark.None {
		return nil
	}
	var text string
	switch t := v.(type) {
	case *frameValue:
		text = t.f.Render()
	case starlark.String:
		text = string(t)
	default:
		text = v.String()
	}
	return &text
}

// formatExecError renders a script failure with its type, message, and a
// backtrace when one exists, so the model can locate and fix the fault.
func formatExecError(err error) string {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Backtrace()
	}
	return err.Error()
}
