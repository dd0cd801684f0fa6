/*
 * minimize.go, part of goConf.
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

package mmff

import (
	"fmt"
	"math"

	v3 "github.com/rmera/goconf/v3"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/spatial/r3"
)

//Minimizer relaxes conformers with the L-BFGS method.
type Minimizer struct {
	FF *ForceField
	//MaxIterations is the maximum number of L-BFGS iterations. 0 means 200.
	MaxIterations int
	//Tolerance is the gradient norm (infinity norm, kcal/mol/A) below which the
	//minimization is considered converged. 0 means 1e-4.
	Tolerance float64
}

//NewMinimizer returns a minimizer for F with the given limits.
func NewMinimizer(F *ForceField, maxIter int, tol float64) *Minimizer {
	return &Minimizer{FF: F, MaxIterations: maxIter, Tolerance: tol}
}

//MinimizeResult is the outcome of one minimization.
type MinimizeResult struct {
	Energy     float64
	Iterations int
	Converged  bool
}

//Minimize relaxes coords in place, keeping the atoms in fixed exactly where they are.
//It returns the final energy. The coordinates are only modified if the minimization
//produces a finite energy no higher than the starting one.
func (M *Minimizer) Minimize(coords *v3.Matrix, fixed []int) (MinimizeResult, error) {
	F := M.FF
	F.checkCoords(coords)
	maxiter := M.MaxIterations
	if maxiter <= 0 {
		maxiter = 200
	}
	tol := M.Tolerance
	if tol <= 0 {
		tol = 1e-4
	}
	isfixed := make([]bool, F.n)
	for _, v := range fixed {
		if v < 0 || v >= F.n {
			return MinimizeResult{}, newError(ErrMinimization, fmt.Sprintf("fixed atom %d out of range", v), "Minimize")
		}
		isfixed[v] = true
	}
	var free []int
	for i, f := range isfixed {
		if !f {
			free = append(free, i)
		}
	}
	x := coords.Vecs()
	e0 := F.evaluate(x, nil).Total()
	if math.IsNaN(e0) || math.IsInf(e0, 0) {
		return MinimizeResult{}, newError(ErrMinimization, "non-finite starting energy", "Minimize")
	}
	if len(free) == 0 {
		return MinimizeResult{Energy: e0, Converged: true}, nil
	}
	//The variables are the coordinates of the free atoms. Each evaluation works
	//on its own copy of the full coordinate set.
	expand := func(v []float64) []r3.Vec {
		full := make([]r3.Vec, len(x))
		copy(full, x)
		for n, a := range free {
			full[a] = r3.Vec{X: v[3*n], Y: v[3*n+1], Z: v[3*n+2]}
		}
		return full
	}
	p := optimize.Problem{
		Func: func(v []float64) float64 {
			return F.evaluate(expand(v), nil).Total()
		},
		Grad: func(grad, v []float64) {
			g := make([]r3.Vec, len(x))
			F.evaluate(expand(v), g)
			for n, a := range free {
				grad[3*n], grad[3*n+1], grad[3*n+2] = g[a].X, g[a].Y, g[a].Z
			}
		},
	}
	init := make([]float64, 3*len(free))
	for n, a := range free {
		init[3*n], init[3*n+1], init[3*n+2] = x[a].X, x[a].Y, x[a].Z
	}
	settings := &optimize.Settings{
		GradientThreshold: tol,
		MajorIterations:   maxiter,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Relative:   1e-12,
			Iterations: 20,
		},
	}
	res, err := optimize.Minimize(p, init, settings, &optimize.LBFGS{})
	if res == nil {
		return MinimizeResult{}, newError(ErrMinimization, fmt.Sprint(err), "Minimize")
	}
	//Line search failures near a minimum still leave a usable best location.
	ef := res.F
	if math.IsNaN(ef) || math.IsInf(ef, 0) {
		return MinimizeResult{}, newError(ErrMinimization, "non-finite final energy", "Minimize")
	}
	if ef > e0 {
		return MinimizeResult{Energy: e0, Iterations: res.MajorIterations}, nil
	}
	for n, a := range free {
		coords.SetVec(a, r3.Vec{X: res.X[3*n], Y: res.X[3*n+1], Z: res.X[3*n+2]})
	}
	converged := err == nil && (res.Status == optimize.GradientThreshold || res.Status == optimize.FunctionConvergence)
	return MinimizeResult{Energy: ef, Iterations: res.MajorIterations, Converged: converged}, nil
}
