package policy

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/rotables/core/model"
)

// LPAllocator shares the available stock of one origin among every flight
// departing from it in the same hour by solving a small linear program per
// class. Larger demands get a slightly higher weight so a scarce pool goes
// to the flights that would otherwise leave the most passengers without a
// kit.
type LPAllocator struct {
	alloc *Allocator
}

// NewLPAllocator wraps an Allocator whose limits bound every flight.
func NewLPAllocator(a *Allocator) *LPAllocator {
	return &LPAllocator{alloc: a}
}

// ErrPoolExceeded signals that a solution used more stock than available.
var ErrPoolExceeded = errors.New("lp allocation exceeds pool")

// solveShare maximises Σ w_i x_i subject to 0 <= x_i <= upper_i and
// Σ x_i = target.
func solveShare(weights, upper []float64, target float64) ([]float64, error) {
	n := len(upper)
	c := make([]float64, n)
	for i, w := range weights {
		c[i] = -w
	}

	g := mat.NewDense(2*n, n, nil)
	h := make([]float64, 2*n)
	for i, u := range upper {
		g.Set(i, i, 1)
		h[i] = u
		g.Set(n+i, i, -1)
	}

	A := mat.NewDense(1, n, nil)
	for i := 0; i < n; i++ {
		A.Set(0, i, 1)
	}
	b := []float64{target}

	cStd, AStd, bStd := lp.Convert(c, g, h, A, b)
	_, sol, err := lp.Simplex(cStd, AStd, bStd, 1e-9, nil)
	if err != nil {
		return nil, err
	}
	x := make([]float64, n)
	for i := range x {
		x[i] = sol[i] - sol[n+i]
	}
	return x, nil
}

// lpSolve can be replaced in tests to simulate solver failures.
var lpSolve = solveShare

// DecideBatchStrict solves the shared allocation. All inputs must depart
// from the same origin and carry the same origin stock. Destination
// headroom is evaluated per flight, so flights to one destination may
// together exceed it. It returns an error when the solver fails.
func (l *LPAllocator) DecideBatchStrict(inputs []LoadInput) ([]model.Kits, error) {
	out := make([]model.Kits, len(inputs))
	if len(inputs) == 0 {
		return out, nil
	}
	pool := l.alloc.Available(inputs[0])
	uppers := make([]model.Kits, len(inputs))
	for i, in := range inputs {
		uppers[i] = l.alloc.Upper(in)
	}

	for _, c := range model.Classes {
		upper := make([]float64, len(inputs))
		var sum int
		for i := range inputs {
			upper[i] = float64(uppers[i].Get(c))
			sum += uppers[i].Get(c)
		}
		target := min(pool.Get(c), sum)
		if target <= 0 {
			continue
		}
		if target == sum {
			for i := range inputs {
				out[i].Set(c, uppers[i].Get(c))
			}
			continue
		}
		weights := make([]float64, len(inputs))
		for i := range inputs {
			weights[i] = 1 + upper[i]/float64(sum)
		}
		x, err := lpSolve(weights, upper, float64(target))
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", c.Key(), err)
		}
		if err := integerize(out, c, x, uppers, target); err != nil {
			return nil, fmt.Errorf("class %s: %w", c.Key(), err)
		}
	}
	return out, nil
}

// integerize rounds the LP solution down, hands the rounding remainder to
// flights with spare room, and checks the pool bound.
func integerize(out []model.Kits, c model.Class, x []float64, uppers []model.Kits, target int) error {
	used := 0
	for i, v := range x {
		n := int(math.Floor(v + 1e-6))
		n = max(0, min(n, uppers[i].Get(c)))
		out[i].Set(c, n)
		used += n
	}
	for i := range out {
		if used >= target {
			break
		}
		spare := uppers[i].Get(c) - out[i].Get(c)
		add := min(spare, target-used)
		out[i].Set(c, out[i].Get(c)+add)
		used += add
	}
	if used > target {
		return ErrPoolExceeded
	}
	return nil
}

// DecideSequential allocates flight by flight, deducting each decision from
// the origin stock and adding it to the destination stock before evaluating
// the next flight.
func (l *LPAllocator) DecideSequential(inputs []LoadInput) []model.Kits {
	out := make([]model.Kits, len(inputs))
	var taken model.Kits
	inbound := make(map[string]model.Kits)
	for i, in := range inputs {
		dst := in.Flight.Destination
		in.OriginStock = in.OriginStock.Sub(taken)
		in.DestinationStock = in.DestinationStock.Add(inbound[dst])
		out[i] = l.alloc.DecideLoad(in)
		taken = taken.Add(out[i])
		inbound[dst] = inbound[dst].Add(out[i])
	}
	return out
}

// DecideBatch solves the shared allocation and falls back to sequential
// allocation when the solver fails. The second return value reports whether
// the LP solution was used.
func (l *LPAllocator) DecideBatch(inputs []LoadInput) ([]model.Kits, bool) {
	if len(inputs) < 2 {
		return l.DecideSequential(inputs), false
	}
	out, err := l.DecideBatchStrict(inputs)
	if err != nil {
		return l.DecideSequential(inputs), false
	}
	return out, true
}
