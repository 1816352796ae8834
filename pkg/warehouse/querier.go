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
package warehouse

import (
	"context"
)

// ColumnMeta describes one result-set column.
type ColumnMeta struct {
	// Name is the column name
	Name string

	// DatabaseType is the warehouse-native type name (e.g. "Array(String)")
	DatabaseType string
}

// Rows iterates a result set row by row.
type Rows interface {
	// Columns returns the result-set column metadata
	Columns() []ColumnMeta

	// Next returns the next row's values, or ok=false when exhausted
	Next() ([]interface{}, bool)

	// Err returns the first error hit during iteration
	Err() error

	// Close releases the result set
	Close() error
}

// Querier executes statements against the warehouse. The bridge depends on
// this interface so tests can substitute a scripted result set.
type Querier interface {
	// Query runs a statement and returns its result set
	Query(ctx context.Context, sql string) (Rows, error)

	// Ping verifies connectivity
	Ping(ctx context.Context) error

	// Close releases the connection
	Close() error
}
