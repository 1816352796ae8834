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
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// statsModule gives scripts basic descriptive statistics over numeric lists:
//
//	stats.sum(xs)  stats.mean(xs)  stats.median(xs)
//	stats.min(xs)  stats.max(xs)   stats.stddev(xs)
var statsModule = &starlarkstruct.Module{
	Name: "stats",
	Members: starlark.StringDict{
		"sum":    statBuiltin("stats.sum", false, floats.Sum),
		"mean":   statBuiltin("stats.mean", true, func(xs []float64) float64 { return stat.Mean(xs, nil) }),
		"median": statBuiltin("stats.median", true, median),
		"min":    statBuiltin("stats.min", true, floats.Min),
		"max":    statBuiltin("stats.max", true, floats.Max),
		"stddev": statBuiltin("stats.stddev", true, func(xs []float64) float64 { return stat.StdDev(xs, nil) }),
	},
}

// statBuiltin wraps a []float64 reduction as a Starlark builtin. Reductions
// with requireNonEmpty reject empty input instead of returning NaN or
// panicking.
func statBuiltin(name string, requireNonEmpty bool, fn func([]float64) float64) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var xsV starlark.Value
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "xs", &xsV); err != nil {
			return nil, err
		}
		xs, err := floatSlice(xsV)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		if requireNonEmpty && len(xs) == 0 {
			return nil, fmt.Errorf("%s: empty sequence", b.Name())
		}
		return starlark.Float(fn(xs)), nil
	})
}

func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
