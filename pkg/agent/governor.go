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
package agent

import (
	"github.com/teradata-labs/weft/pkg/sandbox"
)

// Trim is the context-size governor. Base64 figure payloads from a
// run_analysis result would bloat the model's context on every subsequent
// round trip, so they are removed from the model-visible payload and
// replaced with a count; the figures themselves are returned separately for
// session-scoped accumulation and final delivery to the user. Results of
// every other tool pass through unchanged.
func Trim(toolName string, payload map[string]interface{}) (map[string]interface{}, []string) {
	if toolName != sandbox.ToolName {
		return payload, nil
	}
	plots := stringSlice(payload["plots"])
	if len(plots) == 0 {
		return payload, nil
	}
	visible := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		if k == "plots" {
			continue
		}
		visible[k] = v
	}
	visible["plots_count"] = len(plots)
	return visible, plots
}

func stringSlice(v interface{}) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
