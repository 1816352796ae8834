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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/weft/pkg/frame"
)

// writeArtifact materializes a small revenue table and returns its path.
func writeArtifact(t *testing.T) string {
	t.Helper()
	f, err := frame.FromRows(
		[]string{"month", "revenue"},
		[][]interface{}{
			{"2026-01", 100.0},
			{"2026-02", 250.0},
			{"2026-03", 175.0},
		})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "artifact.parquet")
	require.NoError(t, f.WriteParquet(path))
	return path
}

func TestExecuteCapturesPrints(t *testing.T) {
	res := New().Execute(context.Background(), `
print("rows:", df.num_rows)
print("cols:", df.columns)
result = "done"
`, writeArtifact(t))

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "rows: 3\ncols: [\"month\", \"revenue\"]\n", res.Output)
	require.NotNil(t, res.ResultValue)
	assert.Equal(t, "done", *res.ResultValue)
}

func TestExecuteResultSlotVariants(t *testing.T) {
	path := writeArtifact(t)
	sb := New()

	res := sb.Execute(context.Background(), `x = 1`, path)
	require.True(t, res.Success, res.Error)
	assert.Nil(t, res.ResultValue, "unset result slot stays nil")

	res = sb.Execute(context.Background(), `result = None`, path)
	require.True(t, res.Success, res.Error)
	assert.Nil(t, res.ResultValue, "None result slot stays nil")

	res = sb.Execute(context.Background(), `result = df.head(2)`, path)
	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.ResultValue)
	assert.Contains(t, *res.ResultValue, "| month | revenue |")
	assert.Contains(t, *res.ResultValue, "| 2026-02 | 250 |")

	res = sb.Execute(context.Background(), `result = {"total": 525}`, path)
	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.ResultValue)
	assert.Equal(t, `{"total": 525}`, *res.ResultValue)
}

func TestExecuteColumnAccess(t *testing.T) {
	res := New().Execute(context.Background(), `
rev = df.column("revenue")
result = str(stats.sum(rev))
`, writeArtifact(t))

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "525.0", *res.ResultValue)
}

func TestExecuteUnknownColumnNamesTheColumn(t *testing.T) {
	res := New().Execute(context.Background(), `x = df.column("revenu")`, writeArtifact(t))

	require.False(t, res.Success)
	assert.Contains(t, res.Error, `unknown column: "revenu"`)
	assert.Contains(t, res.Error, "month")
	assert.Contains(t, res.Error, "revenue")
}

func TestExecuteSyntaxErrorContained(t *testing.T) {
	res := New().Execute(context.Background(), `def broken(:`, writeArtifact(t))

	require.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, res.Plots)
}

func TestExecuteRuntimeErrorKeepsOutput(t *testing.T) {
	res := New().Execute(context.Background(), `
print("before the fault")
x = 1 // 0
`, writeArtifact(t))

	require.False(t, res.Success)
	assert.Contains(t, res.Output, "before the fault")
	assert.Contains(t, res.Error, "division by zero")
}

func TestExecuteMissingArtifactFailsClosed(t *testing.T) {
	res := New().Execute(context.Background(), `result = "never runs"`,
		filepath.Join(t.TempDir(), "swept-away.parquet"))

	require.False(t, res.Success)
	assert.Contains(t, res.Error, "failed to load parquet artifact")
	assert.Nil(t, res.ResultValue)
}

func TestExecuteStepBound(t *testing.T) {
	res := NewWithMaxSteps(10_000).Execute(context.Background(), `
n = 0
while True:
    n += 1
`, writeArtifact(t))

	require.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestExecuteStatsHelpers(t *testing.T) {
	res := New().Execute(context.Background(), `
xs = [4.0, 1.0, 3.0, 2.0]
result = " ".join([
    str(stats.min(xs)),
    str(stats.max(xs)),
    str(stats.mean(xs)),
    str(stats.median(xs)),
])
`, writeArtifact(t))

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "1.0 4.0 2.5 2.0", *res.ResultValue)
}

func TestExecuteStatsRejectEmpty(t *testing.T) {
	res := New().Execute(context.Background(), `x = stats.mean([])`, writeArtifact(t))
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "empty sequence")
}

func TestExecuteIsIdempotentAcrossInvocations(t *testing.T) {
	path := writeArtifact(t)
	sb := New()

	first := sb.Execute(context.Background(), `result = str(df.num_rows)`, path)
	second := sb.Execute(context.Background(), `result = str(df.num_rows)`, path)

	require.True(t, first.Success, first.Error)
	require.True(t, second.Success, second.Error)
	assert.Equal(t, *first.ResultValue, *second.ResultValue)
}

func TestExecuteNoStateLeaksBetweenRuns(t *testing.T) {
	path := writeArtifact(t)
	sb := New()

	res := sb.Execute(context.Background(), `leaked = "secret"`, path)
	require.True(t, res.Success, res.Error)

	res = sb.Execute(context.Background(), `result = leaked`, path)
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "undefined: leaked")
}
