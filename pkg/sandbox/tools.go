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
package sandbox

import (
	"context"

	"github.com/teradata-labs/weft/pkg/tools"
)

// ToolName is the run_analysis tool identifier.
const ToolName = "run_analysis"

// RunAnalysisTool exposes the sandbox to the agent loop.
type RunAnalysisTool struct {
	sandbox *Sandbox
}

// NewRunAnalysisTool creates the run_analysis tool.
func NewRunAnalysisTool(sandbox *Sandbox) *RunAnalysisTool {
	return &RunAnalysisTool{sandbox: sandbox}
}

// Name returns the tool name.
func (t *RunAnalysisTool) Name() string { return ToolName }

// Description returns the tool description for LLM context.
func (t *RunAnalysisTool) Description() string {
	return "Execute a Starlark script to analyze and visualize data fetched by run_query. " +
		"The query result is already loaded as the frame `df` — do NOT try to read files. " +
		"Available: df (df.num_rows, df.columns, df.column(name), df.head(n), df.records(), df.render()), " +
		"math, json, stats (sum/mean/median/min/max/stddev over lists), and plot " +
		"(plot.bar(labels, values), plot.line(x, y), plot.scatter(x, y), plot.hist(values); " +
		"all accept title=, xlabel=, ylabel=). Figures are captured automatically. " +
		"SCRIPT RULES: " +
		"1. Set the global `result` to a string (Markdown) or a frame for the final text output. " +
		"2. Use print() to log intermediate steps. " +
		"3. Give every chart a title and axis labels. " +
		"4. Starlark is a Python subset: no imports, no while-true-forever, no file or network access."
}

// InputSchema returns the parameter schema.
func (t *RunAnalysisTool) InputSchema() *tools.JSONSchema {
	return tools.NewObjectSchema("run_analysis parameters",
		map[string]*tools.JSONSchema{
			"code": tools.NewStringSchema(
				"Starlark script to execute. The frame `df` already holds the query result; " +
					"do not attempt to load the parquet file yourself."),
			"parquet_path": tools.NewStringSchema(
				"Path to the parquet artifact (the parquet_path field from a run_query result, verbatim)."),
		},
		[]string{"code", "parquet_path"})
}

// Execute runs the script against the handle. The sandbox never raises; its
// envelope is translated one-to-one into the tool result.
func (t *RunAnalysisTool) Execute(ctx context.Context, params map[string]interface{}) (*tools.Result, error) {
	code, ok := tools.StringParam(params, "code")
	if !ok {
		return tools.Failure("bad_arguments", "missing required parameter: code"), nil
	}
	path, ok := tools.StringParam(params, "parquet_path")
	if !ok {
		return tools.Failure("bad_arguments", "missing required parameter: parquet_path"), nil
	}

	res := t.sandbox.Execute(ctx, code, path)
	if !res.Success {
		failure := tools.Failure("analysis_failed", res.Error)
		failure.Error.Details = map[string]interface{}{"output": res.Output}
		return failure, nil
	}

	var resultValue interface{}
	if res.ResultValue != nil {
		resultValue = *res.ResultValue
	}
	return &tools.Result{
		Success: true,
		Data: map[string]interface{}{
			"output": res.Output,
			"result": resultValue,
			"plots":  res.Plots,
		},
	}, nil
}
