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
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquetRoundTrip(t *testing.T) {
	when := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	f, err := FromRows(
		[]string{"id", "score", "name", "active", "when"},
		[][]interface{}{
			{int64(1), 0.5, "alpha", true, when},
			{int64(2), nil, nil, false, when.Add(time.Hour)},
		})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "round.parquet")
	require.NoError(t, f.WriteParquet(path))

	got, err := ReadParquet(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, got.NumRows())
	assert.Equal(t, f.Names(), got.Names())
	assert.Equal(t, f.Kinds(), got.Kinds())
	assert.Equal(t, int64(1), got.Cell(0, 0))
	assert.Equal(t, 0.5, got.Cell(0, 1))
	assert.Nil(t, got.Cell(1, 1))
	assert.Nil(t, got.Cell(1, 2))
	assert.Equal(t, true, got.Cell(0, 3))
	assert.Equal(t, when, got.Cell(0, 4))
}

func TestParquetRoundTripListColumn(t *testing.T) {
	f, err := FromRows(
		[]string{"tags", "counts"},
		[][]interface{}{
			{[]interface{}{"a", "b"}, []interface{}{int64(1), int64(2)}},
			{[]interface{}{}, nil},
		})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "lists.parquet")
	require.NoError(t, f.WriteParquet(path))

	got, err := ReadParquet(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "list", got.Kinds()["tags"])
	assert.Equal(t, []interface{}{"a", "b"}, got.Cell(0, 0))
	assert.Equal(t, []interface{}{int64(1), int64(2)}, got.Cell(0, 1))
	assert.Equal(t, []interface{}{}, got.Cell(1, 0))
	assert.Nil(t, got.Cell(1, 1))
}

func TestParquetRoundTripMapColumn(t *testing.T) {
	f, err := FromRows(
		[]string{"attrs"},
		[][]interface{}{
			{map[string]interface{}{"region": "emea", "tier": int64(2)}},
		})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "maps.parquet")
	require.NoError(t, f.WriteParquet(path))

	got, err := ReadParquet(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "map", got.Kinds()["attrs"])
	// Map values are stringified on write.
	assert.Equal(t, map[string]interface{}{"region": "emea", "tier": "2"}, got.Cell(0, 0))
}

func TestParquetRoundTripEmptyResult(t *testing.T) {
	f, err := FromRows([]string{"a", "b"}, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, f.WriteParquet(path))

	got, err := ReadParquet(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, got.NumRows())
	assert.Equal(t, []string{"a", "b"}, got.Names())
}

func TestParquetRereadIsStable(t *testing.T) {
	f, err := FromRows([]string{"n"}, [][]interface{}{{int64(1)}, {int64(2)}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "stable.parquet")
	require.NoError(t, f.WriteParquet(path))

	first, err := ReadParquet(context.Background(), path)
	require.NoError(t, err)
	second, err := ReadParquet(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, first.Columns(), second.Columns())
}

func TestReadParquetMissingFile(t *testing.T) {
	_, err := ReadParquet(context.Background(), filepath.Join(t.TempDir(), "gone.parquet"))
	require.Error(t, err)
}
