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
package frame

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRowsInfersKinds(t *testing.T) {
	f, err := FromRows(
		[]string{"id", "score", "name", "active", "when", "tags"},
		[][]interface{}{
			{uint32(1), float32(0.5), "alpha", true, time.Unix(1700000000, 0), []string{"x", "y"}},
			{uint32(2), float32(1.5), "beta", false, time.Unix(1700003600, 0), []string{"z"}},
		})
	require.NoError(t, err)

	assert.Equal(t, 2, f.NumRows())
	assert.Equal(t, 6, f.NumCols())
	assert.Equal(t, map[string]string{
		"id":     "int64",
		"score":  "float64",
		"name":   "string",
		"active": "bool",
		"when":   "timestamp",
		"tags":   "list",
	}, f.Kinds())

	// Widened, not preserved as driver-native widths.
	assert.Equal(t, int64(1), f.Cell(0, 0))
	assert.Equal(t, 0.5, f.Cell(0, 1))
}

func TestFromRowsRaggedRow(t *testing.T) {
	_, err := FromRows([]string{"a", "b"}, [][]interface{}{{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0")
}

func TestCanonicalPointers(t *testing.T) {
	n := int32(7)
	var nilPtr *string

	assert.Equal(t, int64(7), Canonical(&n))
	assert.Nil(t, Canonical(nilPtr))
	assert.Nil(t, Canonical(nil))
	assert.Equal(t, "bytes", Canonical([]byte("bytes")))
}

func TestCanonicalUint64Clamp(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt64), Canonical(uint64(math.MaxUint64)))
	assert.Equal(t, int64(12), Canonical(uint64(12)))
}

func TestCanonicalNestedMap(t *testing.T) {
	v := Canonical(map[string]uint16{"count": 9})
	m, ok := v.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(9), m["count"])
}

func TestPreviewNormalizesCells(t *testing.T) {
	when := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	f, err := FromRows(
		[]string{"v", "ts", "tags", "attrs"},
		[][]interface{}{
			{math.NaN(), when, []interface{}{int64(1), int64(2)}, map[string]interface{}{"b": "2", "a": "1"}},
			{math.Inf(1), when, []interface{}{}, map[string]interface{}{}},
			{1.25, when, nil, nil},
		})
	require.NoError(t, err)

	preview := f.Preview(5)
	require.Len(t, preview, 3)

	assert.Nil(t, preview[0]["v"])
	assert.Nil(t, preview[1]["v"])
	assert.Equal(t, 1.25, preview[2]["v"])
	assert.Equal(t, "2026-03-01T12:30:00Z", preview[0]["ts"])
	assert.Equal(t, "[1, 2]", preview[0]["tags"])
	assert.Equal(t, "{a: 1, b: 2}", preview[0]["attrs"])
	assert.Nil(t, preview[2]["tags"])
}

func TestPreviewBoundedByRowCount(t *testing.T) {
	f, err := FromRows([]string{"a"}, [][]interface{}{{1}, {2}})
	require.NoError(t, err)
	assert.Len(t, f.Preview(5), 2)

	empty, err := FromRows([]string{"a"}, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Preview(5))
}

func TestHead(t *testing.T) {
	f, err := FromRows([]string{"a"}, [][]interface{}{{1}, {2}, {3}})
	require.NoError(t, err)

	assert.Equal(t, 2, f.Head(2).NumRows())
	assert.Equal(t, 3, f.Head(10).NumRows())
	assert.Equal(t, 0, f.Head(-1).NumRows())
}

func TestRenderMarkdown(t *testing.T) {
	f, err := FromRows(
		[]string{"month", "revenue"},
		[][]interface{}{
			{"2026-01", 1000.5},
			{"2026-02", math.NaN()},
		})
	require.NoError(t, err)

	got := f.Render()
	assert.Equal(t,
		"| month | revenue |\n"+
			"| --- | --- |\n"+
			"| 2026-01 | 1000.5 |\n"+
			"| 2026-02 | null |",
		got)
}

func TestNewRejectsMismatchedLengths(t *testing.T) {
	_, err := New([]Column{
		{Name: "a", Kind: KindInt64, Values: []interface{}{int64(1)}},
		{Name: "b", Kind: KindInt64, Values: []interface{}{int64(1), int64(2)}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "b"`)
}

func TestColumnLookup(t *testing.T) {
	f, err := FromRows([]string{"a", "b"}, [][]interface{}{{1, "x"}})
	require.NoError(t, err)

	col, ok := f.Column("b")
	require.True(t, ok)
	assert.Equal(t, KindString, col.Kind)

	_, ok = f.Column("missing")
	assert.False(t, ok)
}
