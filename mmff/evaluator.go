/*
 * evaluator.go, part of goConf.
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

	v3 "github.com/rmera/goconf/v3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

//Components holds the energy of each family of terms, in kcal/mol.
type Components struct {
	Bond, Angle, StretchBend, OutOfPlane, Torsion, Vdw, Elec float64
}

//Total returns the sum of all the components.
func (C Components) Total() float64 {
	return C.Bond + C.Angle + C.StretchBend + C.OutOfPlane + C.Torsion + C.Vdw + C.Elec
}

func (C Components) String() string {
	return fmt.Sprintf("bond %.4f angle %.4f stbn %.4f oop %.4f tors %.4f vdw %.4f elec %.4f total %.4f",
		C.Bond, C.Angle, C.StretchBend, C.OutOfPlane, C.Torsion, C.Vdw, C.Elec, C.Total())
}

//family evaluates one kind of interaction. If g is not nil, the gradient is
//accumulated in it.
type family func(x []r3.Vec, g []r3.Vec) float64

func (F *ForceField) families() []family {
	return []family{F.bondFamily, F.angleFamily, F.stbnFamily, F.oopFamily, F.torsionFamily, F.vdwFamily, F.elecFamily}
}

func (F *ForceField) bondFamily(x, g []r3.Vec) float64 {
	var e float64
	for _, t := range F.bonds {
		if g == nil {
			e += BondStretchingEnergy(x[t.i], x[t.j], t.kb, t.r0)
			continue
		}
		ei, gi, gj := BondStretchingGradient(x[t.i], x[t.j], t.kb, t.r0)
		e += ei
		g[t.i] = r3.Add(g[t.i], gi)
		g[t.j] = r3.Add(g[t.j], gj)
	}
	return e
}

func (F *ForceField) angleFamily(x, g []r3.Vec) float64 {
	var e float64
	for _, t := range F.angles {
		if g == nil {
			e += AngleBendingEnergy(x[t.i], x[t.j], x[t.k], t.ka, t.theta0, t.linear)
			continue
		}
		ei, gr := AngleBendingGradient(x[t.i], x[t.j], x[t.k], t.ka, t.theta0, t.linear)
		e += ei
		accumulate(g, gr[:], t.i, t.j, t.k)
	}
	return e
}

func (F *ForceField) stbnFamily(x, g []r3.Vec) float64 {
	var e float64
	for _, t := range F.stbn {
		if g == nil {
			e += StretchBendEnergy(x[t.i], x[t.j], x[t.k], t.kijk, t.kkji, t.r0ij, t.r0kj, t.theta0)
			continue
		}
		ei, gr := StretchBendGradient(x[t.i], x[t.j], x[t.k], t.kijk, t.kkji, t.r0ij, t.r0kj, t.theta0)
		e += ei
		accumulate(g, gr[:], t.i, t.j, t.k)
	}
	return e
}

func (F *ForceField) oopFamily(x, g []r3.Vec) float64 {
	var e float64
	for _, t := range F.oop {
		if g == nil {
			e += OutOfPlaneBendingEnergy(x[t.i], x[t.j], x[t.k], x[t.l], t.koop)
			continue
		}
		ei, gr := OutOfPlaneBendingGradient(x[t.i], x[t.j], x[t.k], x[t.l], t.koop)
		e += ei
		accumulate(g, gr[:], t.i, t.j, t.k, t.l)
	}
	return e
}

func (F *ForceField) torsionFamily(x, g []r3.Vec) float64 {
	var e float64
	for _, t := range F.torsions {
		if g == nil {
			e += TorsionEnergy(x[t.i], x[t.j], x[t.k], x[t.l], t.v1, t.v2, t.v3)
			continue
		}
		ei, gr := TorsionGradient(x[t.i], x[t.j], x[t.k], x[t.l], t.v1, t.v2, t.v3)
		e += ei
		accumulate(g, gr[:], t.i, t.j, t.k, t.l)
	}
	return e
}

func (F *ForceField) vdwFamily(x, g []r3.Vec) float64 {
	var e float64
	for _, t := range F.vdw {
		if g == nil {
			e += VanDerWaalsEnergy(x[t.i], x[t.j], t.eps, t.rstar, t.rstar7)
			continue
		}
		ei, gi, gj := VanDerWaalsGradient(x[t.i], x[t.j], t.eps, t.rstar, t.rstar7)
		e += ei
		g[t.i] = r3.Add(g[t.i], gi)
		g[t.j] = r3.Add(g[t.j], gj)
	}
	return e
}

func (F *ForceField) elecFamily(x, g []r3.Vec) float64 {
	var e float64
	D, n := F.opts.Dielectric, F.opts.DistanceExponent
	for _, t := range F.elec {
		if g == nil {
			e += ElectrostaticEnergy(x[t.i], x[t.j], t.qq, 1, t.scale, D, n)
			continue
		}
		ei, gi, gj := ElectrostaticGradient(x[t.i], x[t.j], t.qq, 1, t.scale, D, n)
		e += ei
		g[t.i] = r3.Add(g[t.i], gi)
		g[t.j] = r3.Add(g[t.j], gj)
	}
	return e
}

func accumulate(g []r3.Vec, gr []r3.Vec, atoms ...int) {
	for n, a := range atoms {
		g[a] = r3.Add(g[a], gr[n])
	}
}

//evaluate runs all the families. In parallel mode, each family accumulates into its own
//gradient buffer, and the buffers are reduced at the end.
func (F *ForceField) evaluate(x []r3.Vec, g []r3.Vec) Components {
	fams := F.families()
	es := make([]float64, len(fams))
	if !F.opts.Parallel {
		for n, f := range fams {
			es[n] = f(x, g)
		}
	} else {
		var partial [][]r3.Vec
		if g != nil {
			partial = make([][]r3.Vec, len(fams))
		}
		var eg errgroup.Group
		for n, f := range fams {
			var buf []r3.Vec
			if g != nil {
				buf = make([]r3.Vec, len(g))
				partial[n] = buf
			}
			eg.Go(func() error {
				es[n] = f(x, buf)
				return nil
			})
		}
		eg.Wait()
		for _, p := range partial {
			for a := range g {
				g[a] = r3.Add(g[a], p[a])
			}
		}
	}
	return Components{Bond: es[0], Angle: es[1], StretchBend: es[2], OutOfPlane: es[3], Torsion: es[4], Vdw: es[5], Elec: es[6]}
}

func (F *ForceField) checkCoords(coords *v3.Matrix) {
	if coords.NVecs() != F.n {
		panic(fmt.Sprintf("mmff: %d coordinates for a %d-atom force field", coords.NVecs(), F.n))
	}
}

//Energy returns the total energy of the conformer coords, in kcal/mol.
func (F *ForceField) Energy(coords *v3.Matrix) float64 {
	F.checkCoords(coords)
	return F.evaluate(coords.Vecs(), nil).Total()
}

//Components returns the energy of coords split by term family.
func (F *ForceField) Components(coords *v3.Matrix) Components {
	F.checkCoords(coords)
	return F.evaluate(coords.Vecs(), nil)
}

//EnergyGradient returns the total energy of coords and puts its gradient in grad,
//which must have the same size as coords.
func (F *ForceField) EnergyGradient(coords, grad *v3.Matrix) float64 {
	F.checkCoords(coords)
	F.checkCoords(grad)
	g := make([]r3.Vec, F.n)
	e := F.evaluate(coords.Vecs(), g).Total()
	for i, v := range g {
		grad.SetVec(i, v)
	}
	return e
}
