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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimStripsFiguresFromAnalysisResults(t *testing.T) {
	payload := map[string]interface{}{
		"success": true,
		"output":  "computed",
		"result":  "## Findings",
		"plots":   []string{"data:image/png;base64,AAAA", "data:image/png;base64,BBBB"},
	}

	visible, plots := Trim("run_analysis", payload)

	require.Len(t, plots, 2)
	assert.NotContains(t, visible, "plots")
	assert.Equal(t, 2, visible["plots_count"])
	assert.Equal(t, "computed", visible["output"])
	assert.Equal(t, "## Findings", visible["result"])

	// The original payload is untouched.
	assert.Contains(t, payload, "plots")
	assert.NotContains(t, payload, "plots_count")
}

func TestTrimHandlesDecodedJSONSlices(t *testing.T) {
	payload := map[string]interface{}{
		"plots": []interface{}{"data:image/png;base64,AAAA"},
	}

	visible, plots := Trim("run_analysis", payload)
	assert.Equal(t, []string{"data:image/png;base64,AAAA"}, plots)
	assert.Equal(t, 1, visible["plots_count"])
}

func TestTrimPassesThroughEmptyPlots(t *testing.T) {
	payload := map[string]interface{}{"success": true, "plots": []string{}}

	visible, plots := Trim("run_analysis", payload)
	assert.Nil(t, plots)
	assert.Equal(t, payload, visible)
	assert.NotContains(t, visible, "plots_count")
}

func TestTrimIgnoresOtherTools(t *testing.T) {
	payload := map[string]interface{}{
		"success": true,
		"plots":   []string{"not actually a figure field"},
	}

	visible, plots := Trim("run_query", payload)
	assert.Nil(t, plots)
	assert.Equal(t, payload, visible)
}
