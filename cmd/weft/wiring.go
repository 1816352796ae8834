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
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/teradata-labs/weft/pkg/agent"
	"github.com/teradata-labs/weft/pkg/config"
	"github.com/teradata-labs/weft/pkg/history"
	"github.com/teradata-labs/weft/pkg/llm/anthropic"
	"github.com/teradata-labs/weft/pkg/sandbox"
	"github.com/teradata-labs/weft/pkg/tools"
	"github.com/teradata-labs/weft/pkg/warehouse"
)

// runtime bundles the wired components behind one Close.
type runtime struct {
	agent   *agent.Agent
	querier warehouse.Querier
	store   *history.Store
}

func (r *runtime) Close() {
	if r.store != nil {
		r.store.Close()
	}
	if r.querier != nil {
		r.querier.Close()
	}
}

// buildRuntime wires the warehouse bridge, sandbox, model provider, history
// store, and agent from configuration. withHistory=false skips the store for
// one-shot invocations.
func buildRuntime(c *config.Config, withHistory bool) (*runtime, error) {
	if c.LLM.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required (set WEFT_LLM_API_KEY or ANTHROPIC_API_KEY)")
	}
	if err := os.MkdirAll(c.Artifacts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}

	querier, err := warehouse.NewClickHouseQuerier(warehouse.ClickHouseConfig{
		Host:        c.Warehouse.Host,
		Port:        c.Warehouse.Port,
		Database:    c.Warehouse.Database,
		Username:    c.Warehouse.Username,
		Password:    c.Warehouse.Password,
		TLS:         c.Warehouse.TLS,
		CAFile:      c.Warehouse.CAFile,
		DialTimeout: time.Duration(c.Warehouse.DialTimeoutSeconds) * time.Second,
		ReadTimeout: time.Duration(c.Warehouse.ReadTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	bridge := warehouse.NewBridge(querier, warehouse.Config{
		TempDir: c.Artifacts.Dir,
		RowCap:  c.Warehouse.RowCap,
	})
	box := sandbox.NewWithMaxSteps(c.Sandbox.MaxSteps)

	registry := tools.NewRegistry()
	registry.Register(warehouse.NewDiscoverSchemaTool(bridge))
	registry.Register(warehouse.NewRunQueryTool(bridge))
	registry.Register(sandbox.NewRunAnalysisTool(box))

	provider := anthropic.NewClient(anthropic.Config{
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		Endpoint:    c.LLM.Endpoint,
		MaxTokens:   c.LLM.MaxTokens,
		Temperature: c.LLM.Temperature,
		Timeout:     time.Duration(c.LLM.TimeoutSeconds) * time.Second,
	})

	var store *history.Store
	if withHistory {
		store, err = history.NewStore(c.History.Path, c.History.MaxTurns)
		if err != nil {
			querier.Close()
			return nil, err
		}
	}

	ag := agent.New(provider, registry, store, agent.Config{
		MaxIterations:   c.Agent.MaxIterations,
		HistoryWindow:   c.Agent.HistoryWindow,
		MaxAssistantLen: c.Agent.MaxAssistantLen,
	})

	return &runtime{agent: ag, querier: querier, store: store}, nil
}
