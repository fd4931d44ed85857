// Package optim tunes policy parameters by exhaustive grid search.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrEmptyGrid = errors.New("optim: empty grid")

// Axis is one named parameter and the values to try for it.
type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis reads "name=v1,v2,..." or "name=lo:hi:n" (n evenly spaced values).
func ParseAxis(s string) (Axis, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok || name == "" || spec == "" {
		return Axis{}, fmt.Errorf("optim: axis %q: want name=values", s)
	}

	if parts := strings.Split(spec, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return Axis{}, fmt.Errorf("optim: axis %q: %w", s, err)
		}
		if n < 1 {
			return Axis{}, fmt.Errorf("optim: axis %q: need at least one value", s)
		}
		values := make([]float64, n)
		for i := range values {
			if n == 1 {
				values[i] = lo
				break
			}
			values[i] = lo + (hi-lo)*float64(i)/float64(n-1)
		}
		return Axis{Name: name, Values: values}, nil
	}

	var values []float64
	for _, f := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("optim: axis %q: %w", s, err)
		}
		values = append(values, v)
	}
	return Axis{Name: name, Values: values}, nil
}

// Evaluate scores one parameter combination.
type Evaluate func(ctx context.Context, params map[string]float64) (float64, error)

type Trial struct {
	Params map[string]float64
	Score  float64
}

type GridSearch struct {
	axes     []Axis
	maximize bool
}

func NewGridSearch(axes ...Axis) *GridSearch {
	return &GridSearch{axes: axes}
}

// Maximize flips the search to prefer the largest score.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Size is the number of combinations Search will evaluate.
func (g *GridSearch) Size() int {
	if len(g.axes) == 0 {
		return 0
	}
	n := 1
	for _, a := range g.axes {
		n *= len(a.Values)
	}
	return n
}

// Search evaluates every combination in axis order and returns the best trial
// together with all trials. An evaluation error aborts the search.
func (g *GridSearch) Search(ctx context.Context, eval Evaluate) (Trial, []Trial, error) {
	if g.Size() == 0 {
		return Trial{}, nil, ErrEmptyGrid
	}

	trials := make([]Trial, 0, g.Size())
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), eval, &trials); err != nil {
		return Trial{}, trials, err
	}

	best := Trial{Score: math.Inf(1)}
	if g.maximize {
		best.Score = math.Inf(-1)
	}
	for _, t := range trials {
		if (g.maximize && t.Score > best.Score) || (!g.maximize && t.Score < best.Score) {
			best = t
		}
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Evaluate,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.axes) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		score, err := eval(ctx, params)
		if err != nil {
			return fmt.Errorf("evaluate %v: %w", params, err)
		}
		*trials = append(*trials, Trial{Params: params, Score: score})
		return nil
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		current[axis.Name] = val
		if err := g.searchRecursive(ctx, depth+1, current, eval, trials); err != nil {
			return err
		}
	}
	return nil
}
