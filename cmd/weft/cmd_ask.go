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
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askSession  string
	askPlotsDir string
)

var askCmd = &cobra.Command{
	Use:   "ask \"<question>\"",
	Short: "Ask one analytics question from the command line",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", "", "session ID for follow-up questions (default: new session)")
	askCmd.Flags().StringVar(&askPlotsDir, "plots-dir", ".", "directory to write generated charts into")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(cfg, askSession != "")
	if err != nil {
		return err
	}
	defer rt.Close()

	resp := rt.agent.Analyze(cmd.Context(), askSession, args[0])
	if !resp.Success {
		return fmt.Errorf("analysis failed: %s", resp.Error)
	}

	fmt.Println(resp.TextOutput)
	if askSession != "" {
		fmt.Fprintf(os.Stderr, "\nsession: %s\n", resp.SessionID)
	}

	for i, uri := range resp.Plots {
		path, err := writePlot(askPlotsDir, resp.SessionID, i, uri)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not save chart %d: %v\n", i+1, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "chart saved: %s\n", path)
	}
	return nil
}

// writePlot decodes one data:image/png;base64 URI to a PNG file.
func writePlot(dir, sessionID string, idx int, uri string) (string, error) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(uri, prefix) {
		return "", fmt.Errorf("unexpected chart encoding")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("weft_%s_%d.png", sessionID, idx+1))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
