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
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// WriteParquet persists the frame as a Snappy-compressed Parquet file.
// List columns keep their element type; map columns are stored as
// map<utf8, utf8> with stringified values.
func (f *Frame) WriteParquet(path string) error {
	schema := f.arrowSchema()
	rb := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer rb.Release()

	for ci, col := range f.cols {
		if err := appendColumn(rb.Field(ci), col); err != nil {
			return fmt.Errorf("column %q: %w", col.Name, err)
		}
	}

	rec := rb.NewRecord()
	defer rec.Release()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	w, err := pqarrow.NewFileWriter(schema, out, props, pqarrow.DefaultWriterProps())
	if err != nil {
		out.Close()
		return fmt.Errorf("create parquet writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		out.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := w.Close(); err != nil {
		out.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return out.Close()
}

// ReadParquet loads a Parquet file written by WriteParquet back into a frame.
// Re-reading the same file yields the same frame; the sandbox relies on this
// for idempotent re-analysis of a handle.
func ReadParquet(ctx context.Context, path string) (*Frame, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	defer in.Close()

	pr, err := file.NewParquetReader(in)
	if err != nil {
		return nil, fmt.Errorf("read parquet metadata: %w", err)
	}
	defer pr.Close()

	ar, err := pqarrow.NewFileReader(pr, pqarrow.ArrowReadProperties{BatchSize: 64 * 1024}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("open arrow reader: %w", err)
	}
	tbl, err := ar.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("read parquet table: %w", err)
	}
	defer tbl.Release()

	cols := make([]Column, tbl.NumCols())
	for ci := 0; ci < int(tbl.NumCols()); ci++ {
		field := tbl.Schema().Field(ci)
		values := make([]interface{}, 0, tbl.NumRows())
		for _, chunk := range tbl.Column(ci).Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				values = append(values, cellValue(chunk, i))
			}
		}
		cols[ci] = Column{
			Name:   field.Name,
			Kind:   kindOf(field.Type),
			Values: values,
		}
	}
	return New(cols)
}

func (f *Frame) arrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(f.cols))
	for i, c := range f.cols {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(c Column) arrow.DataType {
	switch c.Kind {
	case KindInt64:
		return arrow.PrimitiveTypes.Int64
	case KindFloat64:
		return arrow.PrimitiveTypes.Float64
	case KindBool:
		return arrow.FixedWidthTypes.Boolean
	case KindTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us
	case KindList:
		return arrow.ListOf(listElemType(c.Values))
	case KindMap:
		return arrow.MapOf(arrow.BinaryTypes.String, arrow.BinaryTypes.String)
	default:
		return arrow.BinaryTypes.String
	}
}

// listElemType picks the element type from the first non-nil list element in
// the column. Mixed or exotic element types fall back to utf8.
func listElemType(values []interface{}) arrow.DataType {
	for _, v := range values {
		list, ok := v.([]interface{})
		if !ok {
			continue
		}
		for _, e := range list {
			switch e.(type) {
			case nil:
				continue
			case int64:
				return arrow.PrimitiveTypes.Int64
			case float64:
				return arrow.PrimitiveTypes.Float64
			case bool:
				return arrow.FixedWidthTypes.Boolean
			default:
				return arrow.BinaryTypes.String
			}
		}
	}
	return arrow.BinaryTypes.String
}

func kindOf(dt arrow.DataType) Kind {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return KindInt64
	case arrow.FLOAT32, arrow.FLOAT64:
		return KindFloat64
	case arrow.BOOL:
		return KindBool
	case arrow.TIMESTAMP:
		return KindTimestamp
	case arrow.LIST, arrow.LARGE_LIST:
		return KindList
	case arrow.MAP:
		return KindMap
	default:
		return KindString
	}
}

func appendColumn(b array.Builder, c Column) error {
	for _, v := range c.Values {
		if v == nil {
			b.AppendNull()
			continue
		}
		if err := appendValue(b, v); err != nil {
			return err
		}
	}
	return nil
}

func appendValue(b array.Builder, v interface{}) error {
	switch bld := b.(type) {
	case *array.Int64Builder:
		i, ok := v.(int64)
		if !ok {
			return fmt.Errorf("expected int64, got %T", v)
		}
		bld.Append(i)
	case *array.Float64Builder:
		switch t := v.(type) {
		case float64:
			bld.Append(t)
		case int64:
			bld.Append(float64(t))
		default:
			return fmt.Errorf("expected float64, got %T", v)
		}
	case *array.BooleanBuilder:
		t, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		bld.Append(t)
	case *array.TimestampBuilder:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("expected time.Time, got %T", v)
		}
		bld.Append(arrow.Timestamp(t.UTC().UnixMicro()))
	case *array.ListBuilder:
		list, ok := v.([]interface{})
		if !ok {
			return fmt.Errorf("expected list, got %T", v)
		}
		bld.Append(true)
		vb := bld.ValueBuilder()
		for _, e := range list {
			if e == nil {
				vb.AppendNull()
				continue
			}
			if err := appendValue(vb, e); err != nil {
				return err
			}
		}
	case *array.MapBuilder:
		m, ok := v.(map[string]interface{})
		if !ok {
			return fmt.Errorf("expected map, got %T", v)
		}
		bld.Append(true)
		kb := bld.KeyBuilder().(*array.StringBuilder)
		ib := bld.ItemBuilder().(*array.StringBuilder)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			kb.Append(k)
			ib.Append(formatCell(m[k]))
		}
	case *array.StringBuilder:
		if s, ok := v.(string); ok {
			bld.Append(s)
		} else {
			bld.Append(formatCell(v))
		}
	default:
		return fmt.Errorf("unsupported builder %T", b)
	}
	return nil
}

// cellValue extracts the canonical Go value at index i from an arrow array.
func cellValue(arr arrow.Array, i int) interface{} {
	if arr.IsNull(i) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return int64(a.Value(i))
	case *array.Uint16:
		return int64(a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i))
	case *array.Uint64:
		return int64(a.Value(i))
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC()
	case *array.List:
		start, end := a.ValueOffsets(i)
		inner := a.ListValues()
		out := make([]interface{}, 0, end-start)
		for j := start; j < end; j++ {
			out = append(out, cellValue(inner, int(j)))
		}
		return out
	case *array.Map:
		start, end := a.ValueOffsets(i)
		keys, items := a.Keys(), a.Items()
		out := make(map[string]interface{}, end-start)
		for j := start; j < end; j++ {
			k := fmt.Sprint(cellValue(keys, int(j)))
			out[k] = cellValue(items, int(j))
		}
		return out
	default:
		return arr.ValueStr(i)
	}
}
