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
	"fmt"
	"time"

	"go.starlark.net/starlark"

	"github.com/teradata-labs/weft/pkg/frame"
)

// frameValue exposes a frame.Frame to Starlark as the `df` binding.
//
// Attributes:
//
//	df.num_rows          number of rows
//	df.num_cols          number of columns
//	df.columns           list of column names
//	df.column(name)      one column as a list of values
//	df.head(n=5)         a new frame with the first n rows
//	df.records(limit=0)  rows as a list of dicts (limit=0 means all)
//	df.render()          the frame as a Markdown table string
type frameValue struct {
	f *frame.Frame
}

func newFrameValue(f *frame.Frame) *frameValue {
	return &frameValue{f: f}
}

var _ starlark.HasAttrs = (*frameValue)(nil)

func (v *frameValue) String() string {
	return fmt.Sprintf("<frame %dx%d>", v.f.NumRows(), v.f.NumCols())
}

func (v *frameValue) Type() string          { return "frame" }
func (v *frameValue) Freeze()               {}
func (v *frameValue) Truth() starlark.Bool  { return v.f.NumRows() > 0 }
func (v *frameValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: frame") }

func (v *frameValue) AttrNames() []string {
	return []string{"column", "columns", "head", "num_cols", "num_rows", "records", "render"}
}

func (v *frameValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "num_rows":
		return starlark.MakeInt(v.f.NumRows()), nil
	case "num_cols":
		return starlark.MakeInt(v.f.NumCols()), nil
	case "columns":
		names := v.f.Names()
		elems := make([]starlark.Value, len(names))
		for i, n := range names {
			elems[i] = starlark.String(n)
		}
		return starlark.NewList(elems), nil
	case "column":
		return v.method("column", v.columnImpl), nil
	case "head":
		return v.method("head", v.headImpl), nil
	case "records":
		return v.method("records", v.recordsImpl), nil
	case "render":
		return v.method("render", v.renderImpl), nil
	}
	return nil, nil // defers to Starlark's "no such attribute" error
}

func (v *frameValue) method(name string, impl func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error)) starlark.Value {
	return starlark.NewBuiltin(name, impl).BindReceiver(v)
}

func (v *frameValue) columnImpl(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	col, ok := v.f.Column(name)
	if !ok {
		return nil, fmt.Errorf("unknown column: %q (have %v)", name, v.f.Names())
	}
	elems := make([]starlark.Value, len(col.Values))
	for i, cell := range col.Values {
		elems[i] = starValue(cell)
	}
	return starlark.NewList(elems), nil
}

func (v *frameValue) headImpl(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	n := 5
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "n?", &n); err != nil {
		return nil, err
	}
	return newFrameValue(v.f.Head(n)), nil
}

func (v *frameValue) recordsImpl(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	limit := 0
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "limit?", &limit); err != nil {
		return nil, err
	}
	f := v.f
	if limit > 0 {
		f = f.Head(limit)
	}
	names := f.Names()
	elems := make([]starlark.Value, 0, f.NumRows())
	for r := 0; r < f.NumRows(); r++ {
		d := starlark.NewDict(len(names))
		for c, name := range names {
			if err := d.SetKey(starlark.String(name), starValue(f.Cell(r, c))); err != nil {
				return nil, err
			}
		}
		elems = append(elems, d)
	}
	return starlark.NewList(elems), nil
}

func (v *frameValue) renderImpl(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(args) > 0 || len(kwargs) > 0 {
		return nil, fmt.Errorf("render: unexpected arguments")
	}
	return starlark.String(v.f.Render()), nil
}

// starValue converts a canonical frame cell into a Starlark value.
func starValue(cell interface{}) starlark.Value {
	switch t := cell.(type) {
	case nil:
		return starlark.None
	case int64:
		return starlark.MakeInt64(t)
	case float64:
		return starlark.Float(t)
	case bool:
		return starlark.Bool(t)
	case string:
		return starlark.String(t)
	case time.Time:
		return starlark.String(t.UTC().Format(time.RFC3339))
	case []interface{}:
		elems := make([]starlark.Value, len(t))
		for i, e := range t {
			elems[i] = starValue(e)
		}
		return starlark.NewList(elems)
	case map[string]interface{}:
		d := starlark.NewDict(len(t))
		for k, e := range t {
			_ = d.SetKey(starlark.String(k), starValue(e))
		}
		return d
	default:
		return starlark.String(fmt.Sprint(t))
	}
}
