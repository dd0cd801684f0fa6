/*
 * layout.go, part of goConf.
 *
 * Copyright 2021 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package dg

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultNumCycles             = 50
	DefaultCycleStepCountFactor  = 10.0
	DefaultStartLearningRate     = 1.0
	DefaultLearningRateDecrement = 0.018
	MinLearningRate              = 0.01
	minDistance                  = 1e-8
)

//Layout is a stochastic proximity embedding engine. It places points in 2 or 3 dimensions
//so that their distances approximately satisfy a set of distance constraints.
//
//Each cycle runs ceil(CycleStepCountFactor*numConstraints) steps. Each step picks one constraint
//uniformly at random and, if its distance is out of bounds, moves both points along the axis
//that joins them by learningRate*(target-distance)/2, where target is the violated bound.
//A fixed point does not move, and its partner takes the whole correction.
//The learning rate for cycle c is max(MinLearningRate, StartLearningRate-c*LearningRateDecrement).
//
//With a seed set by SetRandomSeed, Generate is reproducible. Without it, each
//Layout draws its seed from the clock, and results are not reproducible.
type Layout struct {
	dim         int
	constraints *ConstraintSet
	numCycles   int
	stepFactor  float64
	startLR     float64
	lrDecrement float64
	boxSize     float64
	seed        uint64
	seeded      bool
	fixed       map[int][]float64
}

//NewLayout returns a layout engine for dim (2 or 3) dimensions with an empty constraint set.
func NewLayout(dim int) (*Layout, error) {
	if dim != 2 && dim != 3 {
		return nil, newError(ErrInvalidArgument, fmt.Sprintf("only 2 or 3 dimensions supported, got %d", dim), "NewLayout")
	}
	return &Layout{
		dim:         dim,
		constraints: NewConstraintSet(),
		numCycles:   DefaultNumCycles,
		stepFactor:  DefaultCycleStepCountFactor,
		startLR:     DefaultStartLearningRate,
		lrDecrement: DefaultLearningRateDecrement,
		fixed:       make(map[int][]float64),
	}, nil
}

//Dim returns the number of dimensions of the layout.
func (L *Layout) Dim() int { return L.dim }

//Constraints returns the constraint set used by the layout. It can be modified directly.
func (L *Layout) Constraints() *ConstraintSet { return L.constraints }

//SetConstraints replaces the constraint set of the layout.
func (L *Layout) SetConstraints(C *ConstraintSet) {
	if C == nil {
		C = NewConstraintSet()
	}
	L.constraints = C
}

//AddDistanceConstraint adds a constraint to the layout's constraint set.
func (L *Layout) AddDistanceConstraint(pt1, pt2 int, lower, upper float64, source ...Source) error {
	return L.constraints.Add(pt1, pt2, lower, upper, source...)
}

//SetNumCycles sets the number of cycles. n must be positive.
func (L *Layout) SetNumCycles(n int) error {
	if n < 1 {
		return newError(ErrInvalidArgument, fmt.Sprintf("number of cycles must be positive, got %d", n), "SetNumCycles")
	}
	L.numCycles = n
	return nil
}

//SetCycleStepCountFactor sets the number of steps per cycle, per constraint.
func (L *Layout) SetCycleStepCountFactor(f float64) error {
	if !(f > 0) {
		return newError(ErrInvalidArgument, fmt.Sprintf("step count factor must be positive, got %g", f), "SetCycleStepCountFactor")
	}
	L.stepFactor = f
	return nil
}

//SetStartLearningRate sets the learning rate of the first cycle. It must be in (0,1].
func (L *Layout) SetStartLearningRate(r float64) error {
	if !(r > 0) || r > 1 {
		return newError(ErrInvalidArgument, fmt.Sprintf("learning rate must be in (0,1], got %g", r), "SetStartLearningRate")
	}
	L.startLR = r
	return nil
}

//SetLearningRateDecrement sets how much the learning rate decreases after each cycle.
func (L *Layout) SetLearningRateDecrement(d float64) error {
	if d < 0 || math.IsNaN(d) {
		return newError(ErrInvalidArgument, fmt.Sprintf("learning rate decrement must be non-negative, got %g", d), "SetLearningRateDecrement")
	}
	L.lrDecrement = d
	return nil
}

//SetBoxSize sets the edge of the box where the initial positions are drawn.
//0 means that the size is taken from the largest finite upper bound.
func (L *Layout) SetBoxSize(s float64) error {
	if s < 0 || math.IsNaN(s) {
		return newError(ErrInvalidArgument, fmt.Sprintf("box size must be non-negative, got %g", s), "SetBoxSize")
	}
	L.boxSize = s
	return nil
}

//SetRandomSeed makes the layout reproducible.
func (L *Layout) SetRandomSeed(seed uint64) {
	L.seed = seed
	L.seeded = true
}

//SetFixedPoint pins the point idx at coords, which must have Dim elements.
func (L *Layout) SetFixedPoint(idx int, coords []float64) error {
	if idx < 0 {
		return newError(ErrInvalidArgument, fmt.Sprintf("negative point index %d", idx), "SetFixedPoint")
	}
	if len(coords) != L.dim {
		return newError(ErrInvalidArgument, fmt.Sprintf("%d coordinates for a %dD layout", len(coords), L.dim), "SetFixedPoint")
	}
	L.fixed[idx] = append([]float64(nil), coords...)
	return nil
}

//ClearFixedPoints releases all the fixed points.
func (L *Layout) ClearFixedPoints() {
	L.fixed = make(map[int][]float64)
}

//LearningRate returns the learning rate used in the given cycle.
func (L *Layout) LearningRate(cycle int) float64 {
	return math.Max(MinLearningRate, L.startLR-float64(cycle)*L.lrDecrement)
}

//DistanceError returns the aggregated violation of the constraints by coords.
func (L *Layout) DistanceError(coords mat.Matrix) float64 {
	return L.constraints.Violation(coords)
}

func (L *Layout) rng() *rand.Rand {
	seed := L.seed
	if !L.seeded {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

//Generate returns numPoints positions, one per row, that approximately satisfy the
//constraints. Not reaching convergence is not an error, DistanceError reports the quality of the result.
func (L *Layout) Generate(numPoints int) (*mat.Dense, error) {
	if numPoints < 1 {
		return nil, newError(ErrDegenerateInput, fmt.Sprintf("need at least one point, got %d", numPoints), "Layout.Generate")
	}
	if err := L.constraints.Validate(numPoints); err != nil {
		err.(*Error).Decorate("Layout.Generate")
		return nil, err
	}
	for i := range L.fixed {
		if i >= numPoints {
			return nil, newError(ErrIndexOutOfRange, fmt.Sprintf("fixed point %d beyond %d points", i, numPoints), "Layout.Generate")
		}
	}
	r := L.rng()
	coords := L.initialPositions(numPoints, r)
	nc := L.constraints.Len()
	if nc == 0 {
		return coords, nil
	}
	steps := int(math.Ceil(L.stepFactor * float64(nc)))
	pi := make([]float64, L.dim)
	pj := make([]float64, L.dim)
	dir := make([]float64, L.dim)
	for cycle := 0; cycle < L.numCycles; cycle++ {
		lr := L.LearningRate(cycle)
		for s := 0; s < steps; s++ {
			c := L.constraints.c[r.IntN(nc)]
			_, fi := L.fixed[c.Point1]
			_, fj := L.fixed[c.Point2]
			if fi && fj {
				continue
			}
			mat.Row(pi, c.Point1, coords)
			mat.Row(pj, c.Point2, coords)
			floats.SubTo(dir, pi, pj)
			d := floats.Norm(dir, 2)
			t, violated := c.target(d)
			if !violated {
				continue
			}
			if d < minDistance {
				//coincident points get pushed apart along a random direction.
				for k := range dir {
					dir[k] = r.NormFloat64()
				}
				floats.Scale(1/floats.Norm(dir, 2), dir)
				d = 0
			} else {
				floats.Scale(1/d, dir)
			}
			delta := lr * (t - d) / 2
			switch {
			case fi:
				floats.AddScaled(pj, -2*delta, dir)
			case fj:
				floats.AddScaled(pi, 2*delta, dir)
			default:
				floats.AddScaled(pi, delta, dir)
				floats.AddScaled(pj, -delta, dir)
			}
			coords.SetRow(c.Point1, pi)
			coords.SetRow(c.Point2, pj)
		}
	}
	return coords, nil
}

func (L *Layout) initialPositions(numPoints int, r *rand.Rand) *mat.Dense {
	box := L.boxSize
	if box == 0 {
		for _, c := range L.constraints.c {
			if !math.IsInf(c.Upper, 1) && c.Upper > box {
				box = c.Upper
			}
		}
		box = math.Max(box, 1)
	}
	coords := mat.NewDense(numPoints, L.dim, nil)
	for i := 0; i < numPoints; i++ {
		if f, ok := L.fixed[i]; ok {
			coords.SetRow(i, f)
			continue
		}
		for k := 0; k < L.dim; k++ {
			coords.Set(i, k, r.Float64()*box)
		}
	}
	return coords
}
