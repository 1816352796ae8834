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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCapturesFiguresInOrder(t *testing.T) {
	res := New().Execute(context.Background(), `
months = df.column("month")
revenue = df.column("revenue")
plot.bar(months, revenue, title="Revenue by month", xlabel="month", ylabel="EUR")
plot.line([1.0, 2.0, 3.0], revenue, title="Trend")
plot.hist(revenue, bins=4, title="Distribution")
result = "three charts"
`, writeArtifact(t))

	require.True(t, res.Success, res.Error)
	require.Len(t, res.Plots, 3)
	for _, uri := range res.Plots {
		assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"), "figure must be a PNG data URI")
		assert.Greater(t, len(uri), 100)
	}
}

func TestExecuteScatter(t *testing.T) {
	res := New().Execute(context.Background(), `
plot.scatter([1.0, 2.0], [3.0, 4.0], title="Pairs", xlabel="x", ylabel="y")
result = "ok"
`, writeArtifact(t))

	require.True(t, res.Success, res.Error)
	assert.Len(t, res.Plots, 1)
}

func TestExecuteNoFiguresMeansEmptyPlots(t *testing.T) {
	res := New().Execute(context.Background(), `result = "text only"`, writeArtifact(t))
	require.True(t, res.Success, res.Error)
	assert.Empty(t, res.Plots)
}

func TestExecuteFiguresDoNotLeakAcrossRuns(t *testing.T) {
	path := writeArtifact(t)
	sb := New()

	first := sb.Execute(context.Background(), `
plot.bar(["a"], [1.0], title="one")
result = "plotted"
`, path)
	require.True(t, first.Success, first.Error)
	require.Len(t, first.Plots, 1)

	second := sb.Execute(context.Background(), `result = "no charts"`, path)
	require.True(t, second.Success, second.Error)
	assert.Empty(t, second.Plots, "figures from an earlier run must not reappear")
}

func TestExecuteFailedRunDiscardsFigures(t *testing.T) {
	res := New().Execute(context.Background(), `
plot.bar(["a"], [1.0], title="doomed")
x = 1 // 0
`, writeArtifact(t))

	require.False(t, res.Success)
	assert.Empty(t, res.Plots)
}

func TestPlotMismatchedLengthsRejected(t *testing.T) {
	res := New().Execute(context.Background(), `plot.bar(["a", "b"], [1.0])`, writeArtifact(t))
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "2 labels but 1 values")
}
