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
	"bytes"
	"encoding/base64"
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/teradata-labs/weft/internal/log"
)

const figureRegistryKey = "weft.figures"

// plotDataURIPrefix is the encoding every harvested figure is delivered in.
const plotDataURIPrefix = "data:image/png;base64,"

// figureRegistry collects figures created during one sandbox invocation.
// It plays the role of a global figure registry scoped to a single call:
// builtins append to it, harvest renders everything in creation order, and
// clear wipes it in the guaranteed teardown step.
type figureRegistry struct {
	figures []*plot.Plot
}

func newFigureRegistry() *figureRegistry {
	return &figureRegistry{}
}

func (r *figureRegistry) add(p *plot.Plot) {
	r.figures = append(r.figures, p)
}

func (r *figureRegistry) clear() {
	r.figures = nil
}

// harvest renders every open figure to a base64 PNG data URI. A figure that
// fails to render is skipped with a log entry rather than failing the whole
// invocation.
func (r *figureRegistry) harvest() []string {
	out := make([]string, 0, len(r.figures))
	for i, p := range r.figures {
		wt, err := p.WriterTo(8*vg.Inch, 5*vg.Inch, "png")
		if err != nil {
			log.Warn("figure render failed", zap.Int("figure", i), zap.Error(err))
			continue
		}
		var buf bytes.Buffer
		if _, err := wt.WriteTo(&buf); err != nil {
			log.Warn("figure encode failed", zap.Int("figure", i), zap.Error(err))
			continue
		}
		out = append(out, plotDataURIPrefix+base64.StdEncoding.EncodeToString(buf.Bytes()))
	}
	return out
}

func registryFrom(thread *starlark.Thread) (*figureRegistry, error) {
	reg, ok := thread.Local(figureRegistryKey).(*figureRegistry)
	if !ok {
		return nil, fmt.Errorf("no figure registry bound to this thread")
	}
	return reg, nil
}

// plotModule is the fixed plotting capability set exposed to scripts:
//
//	plot.bar(labels, values, title="", xlabel="", ylabel="")
//	plot.line(x, y, title="", xlabel="", ylabel="")
//	plot.scatter(x, y, title="", xlabel="", ylabel="")
//	plot.hist(values, bins=16, title="", xlabel="", ylabel="")
//
// Every call creates one figure; all figures are captured automatically.
var plotModule = &starlarkstruct.Module{
	Name: "plot",
	Members: starlark.StringDict{
		"bar":     starlark.NewBuiltin("plot.bar", plotBar),
		"line":    starlark.NewBuiltin("plot.line", plotLine),
		"scatter": starlark.NewBuiltin("plot.scatter", plotScatter),
		"hist":    starlark.NewBuiltin("plot.hist", plotHist),
	},
}

func newFigure(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func plotBar(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		labelsV, valuesV      starlark.Value
		title, xlabel, ylabel string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"labels", &labelsV, "values", &valuesV,
		"title?", &title, "xlabel?", &xlabel, "ylabel?", &ylabel); err != nil {
		return nil, err
	}
	labels, err := stringSlice(labelsV)
	if err != nil {
		return nil, fmt.Errorf("%s: labels: %w", b.Name(), err)
	}
	values, err := floatSlice(valuesV)
	if err != nil {
		return nil, fmt.Errorf("%s: values: %w", b.Name(), err)
	}
	if len(labels) != len(values) {
		return nil, fmt.Errorf("%s: %d labels but %d values", b.Name(), len(labels), len(values))
	}

	p := newFigure(title, xlabel, ylabel)
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(24))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	reg, err := registryFrom(thread)
	if err != nil {
		return nil, err
	}
	reg.add(p)
	return starlark.None, nil
}

func plotLine(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return plotXY(thread, b, args, kwargs, func(pts plotter.XYs) (plot.Plotter, error) {
		return plotter.NewLine(pts)
	})
}

func plotScatter(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return plotXY(thread, b, args, kwargs, func(pts plotter.XYs) (plot.Plotter, error) {
		return plotter.NewScatter(pts)
	})
}

func plotXY(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
	build func(plotter.XYs) (plot.Plotter, error)) (starlark.Value, error) {
	var (
		xV, yV                starlark.Value
		title, xlabel, ylabel string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"x", &xV, "y", &yV,
		"title?", &title, "xlabel?", &xlabel, "ylabel?", &ylabel); err != nil {
		return nil, err
	}
	xs, err := floatSlice(xV)
	if err != nil {
		return nil, fmt.Errorf("%s: x: %w", b.Name(), err)
	}
	ys, err := floatSlice(yV)
	if err != nil {
		return nil, fmt.Errorf("%s: y: %w", b.Name(), err)
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%s: %d x values but %d y values", b.Name(), len(xs), len(ys))
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}

	p := newFigure(title, xlabel, ylabel)
	pl, err := build(pts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	p.Add(pl)

	reg, err := registryFrom(thread)
	if err != nil {
		return nil, err
	}
	reg.add(p)
	return starlark.None, nil
}

func plotHist(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		valuesV               starlark.Value
		bins                  = 16
		title, xlabel, ylabel string
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"values", &valuesV, "bins?", &bins,
		"title?", &title, "xlabel?", &xlabel, "ylabel?", &ylabel); err != nil {
		return nil, err
	}
	values, err := floatSlice(valuesV)
	if err != nil {
		return nil, fmt.Errorf("%s: values: %w", b.Name(), err)
	}

	p := newFigure(title, xlabel, ylabel)
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	p.Add(h)

	reg, err := registryFrom(thread)
	if err != nil {
		return nil, err
	}
	reg.add(p)
	return starlark.None, nil
}

// floatSlice converts a Starlark sequence of numbers into float64s.
// None elements are rejected rather than coerced to zero.
func floatSlice(v starlark.Value) ([]float64, error) {
	it := starlark.Iterate(v)
	if it == nil {
		return nil, fmt.Errorf("expected an iterable, got %s", v.Type())
	}
	defer it.Done()
	var (
		out  []float64
		elem starlark.Value
		i    int
	)
	for it.Next(&elem) {
		f, ok := starlark.AsFloat(elem)
		if !ok {
			return nil, fmt.Errorf("element %d is %s, want a number", i, elem.Type())
		}
		out = append(out, f)
		i++
	}
	return out, nil
}

func stringSlice(v starlark.Value) ([]string, error) {
	it := starlark.Iterate(v)
	if it == nil {
		return nil, fmt.Errorf("expected an iterable, got %s", v.Type())
	}
	defer it.Done()
	var (
		out  []string
		elem starlark.Value
	)
	for it.Next(&elem) {
		if s, ok := starlark.AsString(elem); ok {
			out = append(out, s)
		} else {
			out = append(out, elem.String())
		}
	}
	return out, nil
}
