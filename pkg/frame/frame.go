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

// Package frame provides the columnar table that moves query results between
// the warehouse bridge and the analysis sandbox. A Frame holds typed columns
// in memory; parquet.go persists it as a Parquet file so nested and array
// values survive the hand-off without being squeezed through JSON.
package frame

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Kind tags the logical type of a column. Warehouse-native wrapper types are
// coerced to these canonical kinds before the frame is built.
type Kind string

const (
	KindInt64     Kind = "int64"
	KindFloat64   Kind = "float64"
	KindBool      Kind = "bool"
	KindString    Kind = "string"
	KindTimestamp Kind = "timestamp"
	KindList      Kind = "list"
	KindMap       Kind = "map"
)

// Column is a named, typed sequence of values. A nil value is a NULL.
// Cell values use the canonical Go representation for their kind: int64,
// float64, bool, string, time.Time, []interface{} or map[string]interface{}.
type Column struct {
	Name   string
	Kind   Kind
	Values []interface{}
}

// Frame is an immutable in-memory columnar table.
type Frame struct {
	cols []Column
	rows int
}

// New builds a frame from columns, validating that all columns have the same
// length.
func New(cols []Column) (*Frame, error) {
	rows := 0
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if i == 0 {
			rows = len(c.Values)
			continue
		}
		if len(c.Values) != rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", c.Name, len(c.Values), rows)
		}
	}
	return &Frame{cols: cols, rows: rows}, nil
}

// FromRows builds a frame from row-oriented data, coercing every cell to its
// canonical kind and inferring each column's kind from its values.
func FromRows(names []string, rows [][]interface{}) (*Frame, error) {
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name, Values: make([]interface{}, 0, len(rows))}
	}
	for ri, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", ri, len(row), len(names))
		}
		for ci, v := range row {
			cols[ci].Values = append(cols[ci].Values, Canonical(v))
		}
	}
	for i := range cols {
		cols[i].Kind = inferKind(cols[i].Values)
	}
	return New(cols)
}

// NumRows returns the number of rows.
func (f *Frame) NumRows() int { return f.rows }

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.cols) }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Kinds returns the column kind tags keyed by column name.
func (f *Frame) Kinds() map[string]string {
	kinds := make(map[string]string, len(f.cols))
	for _, c := range f.cols {
		kinds[c.Name] = string(c.Kind)
	}
	return kinds
}

// Columns returns the underlying columns in order.
func (f *Frame) Columns() []Column { return f.cols }

// Column returns the named column.
func (f *Frame) Column(name string) (Column, bool) {
	for _, c := range f.cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Cell returns the value at (row, col).
func (f *Frame) Cell(row, col int) interface{} {
	return f.cols[col].Values[row]
}

// Head returns a frame with at most n leading rows.
func (f *Frame) Head(n int) *Frame {
	if n > f.rows {
		n = f.rows
	}
	if n < 0 {
		n = 0
	}
	cols := make([]Column, len(f.cols))
	for i, c := range f.cols {
		cols[i] = Column{Name: c.Name, Kind: c.Kind, Values: c.Values[:n]}
	}
	return &Frame{cols: cols, rows: n}
}

// Preview returns up to n rows as wire-safe records: composites become their
// textual representation, NaN and infinities become nil, timestamps become
// RFC 3339 strings. This keeps the mapping serializable by any JSON encoder.
func (f *Frame) Preview(n int) []map[string]interface{} {
	head := f.Head(n)
	records := make([]map[string]interface{}, 0, head.rows)
	for r := 0; r < head.rows; r++ {
		rec := make(map[string]interface{}, len(head.cols))
		for _, c := range head.cols {
			rec[c.Name] = NormalizeCell(c.Values[r])
		}
		records = append(records, rec)
	}
	return records
}

// Render formats the frame as a Markdown table, used when the sandbox result
// slot holds a frame.
func (f *Frame) Render() string {
	var b strings.Builder
	b.WriteString("| ")
	b.WriteString(strings.Join(f.Names(), " | "))
	b.WriteString(" |\n|")
	for range f.cols {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for r := 0; r < f.rows; r++ {
		b.WriteString("| ")
		cells := make([]string, len(f.cols))
		for ci, c := range f.cols {
			cells[ci] = formatCell(c.Values[r])
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString(" |\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Canonical coerces a warehouse-native value to its canonical representation:
// pointers are dereferenced (nil pointer -> NULL), integer widths widen to
// int64, floats to float64, byte slices become strings, and slices/maps keep
// their structure with canonical elements.
func Canonical(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		// Values beyond int64 range are rare in aggregates; clamp rather
		// than overflow silently.
		if t > math.MaxInt64 {
			return int64(math.MaxInt64)
		}
		return int64(t)
	case float32:
		return float64(t)
	case float64:
		return t
	case bool:
		return t
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return Canonical(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Canonical(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Canonical(iter.Value().Interface())
		}
		return out
	}
	return fmt.Sprint(v)
}

// NormalizeCell converts a canonical cell value into something every generic
// JSON encoder can express: NaN/Inf -> nil, time -> RFC 3339, list/map ->
// textual representation.
func NormalizeCell(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case []interface{}, map[string]interface{}:
		return formatCell(t)
	default:
		return v
	}
}

func formatCell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "null"
		}
		return fmt.Sprintf("%g", t)
	case []interface{}:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = formatCell(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, formatCell(t[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
		return fmt.Sprint(t)
	}
}

// inferKind picks a column kind from the first non-nil canonical value.
// All-NULL columns default to string.
func inferKind(values []interface{}) Kind {
	for _, v := range values {
		switch v.(type) {
		case nil:
			continue
		case int64:
			return KindInt64
		case float64:
			return KindFloat64
		case bool:
			return KindBool
		case string:
			return KindString
		case time.Time:
			return KindTimestamp
		case []interface{}:
			return KindList
		case map[string]interface{}:
			return KindMap
		default:
			return KindString
		}
	}
	return KindString
}
