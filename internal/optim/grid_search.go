package optim

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Point is one evaluated parameter combination.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch evaluates a metric over the cartesian product of parameter
// ranges, varying the last parameter fastest.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search visits every grid point. A failed evaluation is recorded on its
// point and does not stop the search; only context cancellation does.
func (g *GridSearch) Search(
	ctx context.Context,
	eval func(ctx context.Context, params map[string]float64) (float64, error),
) ([]Point, error) {
	var points []Point
	err := g.searchRecursive(ctx, 0, make(map[string]float64), eval, &points)
	return points, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval func(context.Context, map[string]float64) (float64, error),
	points *[]Point,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		val, err := eval(ctx, current)
		*points = append(*points, Point{Params: current, Value: val, Err: err})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval, points); err != nil {
			return err
		}
	}
	return nil
}

// Best returns the successful point with the largest value, or false if
// every evaluation failed.
func Best(points []Point) (Point, bool) {
	best, found := Point{Value: math.Inf(-1)}, false
	for _, p := range points {
		if p.Err == nil && !math.IsNaN(p.Value) && p.Value > best.Value {
			best, found = p, true
		}
	}
	return best, found
}

// ParseRange reads "name=lo:hi:n" into a name and n evenly spaced values.
// "name=v" is a single value.
func ParseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("range %q: want name=lo:hi:n", s)
	}
	parts := strings.Split(spec, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return "", nil, fmt.Errorf("range %q: %w", s, err)
		}
		return name, []float64{v}, nil
	case 3:
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return "", nil, fmt.Errorf("range %q: want name=lo:hi:n", s)
		}
		if n < 1 {
			return "", nil, fmt.Errorf("range %q: need at least one point", s)
		}
		if n == 1 {
			return name, []float64{lo}, nil
		}
		return name, floats.Span(make([]float64, n), lo, hi), nil
	default:
		return "", nil, fmt.Errorf("range %q: want name=lo:hi:n", s)
	}
}
