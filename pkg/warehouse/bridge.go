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

// Package warehouse implements the columnar bridge between the ClickHouse
// warehouse and the analysis sandbox. A query result never travels through
// the conversation inline: the bridge materializes it as a Parquet file and
// hands back a small preview plus the file path.
package warehouse

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/weft/internal/log"
	"github.com/teradata-labs/weft/pkg/frame"
)

const (
	// DefaultRowCap is appended as a LIMIT when the statement has none.
	DefaultRowCap = 50000

	// PreviewRows is the number of rows included in a handle's preview.
	PreviewRows = 5
)

// Config holds bridge settings.
type Config struct {
	// TempDir is where Parquet artifacts are written
	TempDir string

	// RowCap is the LIMIT appended to uncapped statements (default: 50000)
	RowCap int
}

// Bridge executes read-only queries and materializes results as Parquet.
type Bridge struct {
	querier Querier
	cfg     Config
}

// QueryHandle references a materialized query result. The sandbox may read
// the backing file any number of times until the retention sweep deletes it.
type QueryHandle struct {
	ParquetPath string                   `json:"parquet_path"`
	RowCount    int                      `json:"row_count"`
	Columns     []string                 `json:"columns"`
	Types       map[string]string        `json:"dtypes"`
	Preview     []map[string]interface{} `json:"preview_first_5_rows"`
}

// TableSchema describes one warehouse table for schema discovery.
type TableSchema struct {
	Table   string      `json:"table"`
	Columns []ColumnDef `json:"columns"`
}

// ColumnDef is one column of a discovered table.
type ColumnDef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// NewBridge creates a bridge over the given querier.
func NewBridge(querier Querier, cfg Config) *Bridge {
	if cfg.RowCap <= 0 {
		cfg.RowCap = DefaultRowCap
	}
	if cfg.TempDir == "" {
		cfg.TempDir = "/tmp/weft"
	}
	return &Bridge{querier: querier, cfg: cfg}
}

// TempDir returns the artifact directory.
func (b *Bridge) TempDir() string { return b.cfg.TempDir }

// RunQuery validates, caps, and executes a read-only statement, writes the
// full result set to a Parquet artifact, and returns a handle with a
// normalized preview. A validation or warehouse failure comes back as an
// error; the tool layer folds it into a failed result for the model.
func (b *Bridge) RunQuery(ctx context.Context, sql string) (*QueryHandle, error) {
	if err := ValidateReadOnly(sql); err != nil {
		return nil, err
	}
	capped := EnsureRowCap(sql, b.cfg.RowCap)

	f, err := b.queryFrame(ctx, capped)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(b.cfg.TempDir, ArtifactName(capped, time.Now()))
	if err := f.WriteParquet(path); err != nil {
		return nil, fmt.Errorf("materialize result: %w", err)
	}

	log.Info("query materialized",
		zap.Int("rows", f.NumRows()),
		zap.Int("columns", f.NumCols()),
		zap.String("parquet_path", path))

	return &QueryHandle{
		ParquetPath: path,
		RowCount:    f.NumRows(),
		Columns:     f.Names(),
		Types:       f.Kinds(),
		Preview:     f.Preview(PreviewRows),
	}, nil
}

// DiscoverSchema lists every table in the current database with its columns
// and warehouse-native types.
func (b *Bridge) DiscoverSchema(ctx context.Context) ([]TableSchema, error) {
	const stmt = `SELECT table, name, type FROM system.columns WHERE database = currentDatabase() ORDER BY table, position`

	rows, err := b.querier.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close()

	var (
		schemas []TableSchema
		current *TableSchema
	)
	for {
		values, ok := rows.Next()
		if !ok {
			break
		}
		if len(values) != 3 {
			return nil, fmt.Errorf("unexpected system.columns row width %d", len(values))
		}
		table := fmt.Sprint(frame.Canonical(values[0]))
		name := fmt.Sprint(frame.Canonical(values[1]))
		typ := fmt.Sprint(frame.Canonical(values[2]))
		if current == nil || current.Table != table {
			schemas = append(schemas, TableSchema{Table: table})
			current = &schemas[len(schemas)-1]
		}
		current.Columns = append(current.Columns, ColumnDef{Name: name, Type: typ})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return schemas, nil
}

func (b *Bridge) queryFrame(ctx context.Context, sql string) (*frame.Frame, error) {
	rows, err := b.querier.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := rows.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}

	var data [][]interface{}
	for {
		values, ok := rows.Next()
		if !ok {
			break
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return frame.FromRows(names, data)
}

// ArtifactName builds the deterministic artifact file name for a statement:
// query_<sha256(sql) first 10 hex>_<unix-timestamp>.parquet. The timestamp
// keeps names collision-safe across re-runs and sortable by recency.
func ArtifactName(sql string, now time.Time) string {
	sum := sha256.Sum256([]byte(sql))
	return fmt.Sprintf("query_%s_%d.parquet", hex.EncodeToString(sum[:])[:10], now.Unix())
}
