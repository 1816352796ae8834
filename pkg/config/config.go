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

// Package config loads the weft server configuration.
// Priority: config file > environment variables (WEFT_ prefix) > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigFileName is the name of the config file (weft.yaml).
const DefaultConfigFileName = "weft"

// Config holds all configuration for the weft server.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Warehouse WarehouseConfig `mapstructure:"warehouse"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Sandbox   SandboxConfig   `mapstructure:"sandbox"`
	LLM       LLMConfig       `mapstructure:"llm"`
	History   HistoryConfig   `mapstructure:"history"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// Host is the listen address (default: 0.0.0.0)
	Host string `mapstructure:"host"`

	// Port is the listen port (default: 8080)
	Port int `mapstructure:"port"`

	// RequestTimeoutSeconds bounds one analysis request end to end
	// (default: 600)
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// WarehouseConfig holds ClickHouse connection configuration.
type WarehouseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// TLS enables a TLS connection (default: true; port defaults follow)
	TLS bool `mapstructure:"tls"`

	// CAFile is an optional CA bundle for TLS verification
	CAFile string `mapstructure:"ca_file"`

	DialTimeoutSeconds int `mapstructure:"dial_timeout_seconds"`
	ReadTimeoutSeconds int `mapstructure:"read_timeout_seconds"`

	// RowCap is the LIMIT injected into uncapped queries (default: 50000)
	RowCap int `mapstructure:"row_cap"`
}

// ArtifactsConfig holds parquet artifact storage configuration.
type ArtifactsConfig struct {
	// Dir is the artifact directory (default: <tmp>/weft-artifacts)
	Dir string `mapstructure:"dir"`

	// TTLSeconds is how long an artifact survives untouched (default: 3600)
	TTLSeconds int `mapstructure:"ttl_seconds"`

	// SweepIntervalSeconds is the cleanup cadence (default: 600)
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds"`
}

// SandboxConfig holds analysis sandbox configuration.
type SandboxConfig struct {
	// MaxSteps bounds script execution; 0 means the built-in default
	MaxSteps uint64 `mapstructure:"max_steps"`
}

// LLMConfig holds model provider configuration.
type LLMConfig struct {
	// APIKey is the Anthropic API key (env: WEFT_LLM_API_KEY or ANTHROPIC_API_KEY)
	APIKey string `mapstructure:"api_key"`

	Model          string  `mapstructure:"model"`
	Endpoint       string  `mapstructure:"endpoint"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// HistoryConfig holds conversation history configuration.
type HistoryConfig struct {
	// Path is the SQLite database path (default: <artifacts dir>/history.db)
	Path string `mapstructure:"path"`

	// MaxTurns is the per-session sliding window (default: 20)
	MaxTurns int `mapstructure:"max_turns"`

	// TTLSeconds expires idle sessions (default: 3600)
	TTLSeconds int `mapstructure:"ttl_seconds"`

	// SweepIntervalSeconds is the eviction cadence (default: 600)
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds"`
}

// AgentConfig holds tool-use loop configuration.
type AgentConfig struct {
	// MaxIterations caps model round trips per request (default: 10)
	MaxIterations int `mapstructure:"max_iterations"`

	// HistoryWindow is how many stored turns are replayed (default: store window)
	HistoryWindow int `mapstructure:"history_window"`

	// MaxAssistantLen caps persisted final answers (default: 8000)
	MaxAssistantLen int `mapstructure:"max_assistant_len"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Production selects JSON output instead of console output
	Production bool `mapstructure:"production"`
}

// LoadConfig loads configuration from file, environment, and defaults.
// cfgFile, when non-empty, names an explicit config file; otherwise weft.yaml
// is searched in the current directory and /etc/weft/.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/weft/")
		v.SetConfigName(DefaultConfigFileName)
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
		// No config file is fine; env vars and defaults carry it.
	}

	v.SetEnvPrefix("WEFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.LLM.APIKey == "" {
		config.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if config.History.Path == "" {
		config.History.Path = filepath.Join(config.Artifacts.Dir, "history.db")
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 600)

	v.SetDefault("warehouse.host", "localhost")
	v.SetDefault("warehouse.tls", true)
	v.SetDefault("warehouse.database", "default")
	v.SetDefault("warehouse.username", "default")
	v.SetDefault("warehouse.dial_timeout_seconds", 10)
	v.SetDefault("warehouse.read_timeout_seconds", 300)
	v.SetDefault("warehouse.row_cap", 50000)

	v.SetDefault("artifacts.dir", filepath.Join(os.TempDir(), "weft-artifacts"))
	v.SetDefault("artifacts.ttl_seconds", 3600)
	v.SetDefault("artifacts.sweep_interval_seconds", 600)

	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.temperature", 1.0)
	v.SetDefault("llm.timeout_seconds", 120)

	v.SetDefault("history.max_turns", 20)
	v.SetDefault("history.ttl_seconds", 3600)
	v.SetDefault("history.sweep_interval_seconds", 600)

	v.SetDefault("agent.max_iterations", 10)
	v.SetDefault("agent.max_assistant_len", 8000)

	v.SetDefault("logging.production", false)
}
