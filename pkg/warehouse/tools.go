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
package warehouse

import (
	"context"
	"os"

	"github.com/teradata-labs/weft/pkg/tools"
)

// DiscoverSchemaTool exposes schema discovery to the agent loop.
type DiscoverSchemaTool struct {
	bridge *Bridge
}

// NewDiscoverSchemaTool creates the discover_schema tool.
func NewDiscoverSchemaTool(bridge *Bridge) *DiscoverSchemaTool {
	return &DiscoverSchemaTool{bridge: bridge}
}

// Name returns the tool name.
func (t *DiscoverSchemaTool) Name() string { return "discover_schema" }

// Description returns the tool description for LLM context.
func (t *DiscoverSchemaTool) Description() string {
	return "List every table in the ClickHouse database with its columns and types. " +
		"Call this FIRST when you do not yet know the data layout. " +
		"Do not call it again if the schema is already in the conversation."
}

// InputSchema returns the (empty) parameter schema.
func (t *DiscoverSchemaTool) InputSchema() *tools.JSONSchema {
	return tools.NewObjectSchema("discover_schema takes no parameters", nil, nil)
}

// Execute runs schema discovery.
func (t *DiscoverSchemaTool) Execute(ctx context.Context, params map[string]interface{}) (*tools.Result, error) {
	schemas, err := t.bridge.DiscoverSchema(ctx)
	if err != nil {
		return tools.Failure("schema_discovery_failed", err.Error()), nil
	}
	out := make([]interface{}, len(schemas))
	for i, s := range schemas {
		cols := make([]interface{}, len(s.Columns))
		for j, c := range s.Columns {
			cols[j] = map[string]interface{}{"name": c.Name, "type": c.Type}
		}
		out[i] = map[string]interface{}{"table": s.Table, "columns": cols}
	}
	return &tools.Result{
		Success: true,
		Data:    map[string]interface{}{"tables": out},
	}, nil
}

// RunQueryTool exposes the columnar bridge to the agent loop.
type RunQueryTool struct {
	bridge *Bridge
}

// NewRunQueryTool creates the run_query tool.
func NewRunQueryTool(bridge *Bridge) *RunQueryTool {
	return &RunQueryTool{bridge: bridge}
}

// Name returns the tool name.
func (t *RunQueryTool) Name() string { return "run_query" }

// Description returns the tool description for LLM context.
func (t *RunQueryTool) Description() string {
	return "Execute a SELECT statement against the ClickHouse warehouse. " +
		"Returns the row count, column names and types, a preview of the first 5 rows, " +
		"and the parquet_path holding the full result. " +
		"RULES: only SELECT statements are allowed; aggregate and filter in SQL itself " +
		"(ClickHouse is very fast at it); always add a sensible LIMIT (1000-50000); " +
		"use ClickHouse functions such as toStartOfMonth(), toYear(), arrayJoin() freely."
}

// InputSchema returns the parameter schema.
func (t *RunQueryTool) InputSchema() *tools.JSONSchema {
	return tools.NewObjectSchema("run_query parameters",
		map[string]*tools.JSONSchema{
			"sql": tools.NewStringSchema("SQL SELECT statement to execute against ClickHouse"),
		},
		[]string{"sql"})
}

// Execute validates and runs the statement, returning the query handle.
func (t *RunQueryTool) Execute(ctx context.Context, params map[string]interface{}) (*tools.Result, error) {
	sql, ok := tools.StringParam(params, "sql")
	if !ok {
		return tools.Failure("bad_arguments", "missing required parameter: sql"), nil
	}
	if err := os.MkdirAll(t.bridge.TempDir(), 0o755); err != nil {
		return tools.Failure("query_failed", err.Error()), nil
	}

	handle, err := t.bridge.RunQuery(ctx, sql)
	if err != nil {
		return tools.Failure("query_failed", err.Error()), nil
	}
	return &tools.Result{
		Success: true,
		Data: map[string]interface{}{
			"row_count":            handle.RowCount,
			"columns":              handle.Columns,
			"dtypes":               handle.Types,
			"preview_first_5_rows": handle.Preview,
			"parquet_path":         handle.ParquetPath,
		},
	}, nil
}
