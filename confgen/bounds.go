/*
 * bounds.go, part of goConf.
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

package confgen

import (
	"math"

	chem "github.com/rmera/goconf"
	"github.com/rmera/goconf/dg"
	"github.com/rmera/goconf/mmff"
	v3 "github.com/rmera/goconf/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

//Tolerances of the distance bounds, in A.
const (
	bondTol     = 0.01
	angleTol    = 0.04
	torsionTol  = 0.1
	fragmentTol = 0.01
	fixedTol    = 0.001
	//pairs farther apart than 3 bonds can't be closer than this fraction of
	//the sum of their van der Waals radii.
	clashScale = 0.7
)

type pair [2]int

func mkpair(i, j int) pair {
	if i > j {
		i, j = j, i
	}
	return pair{i, j}
}

//bounder builds the distance bounds for a molecule from the reference geometry of
//its force field.
type bounder struct {
	top  chem.Bonder
	ff   *mmff.ForceField
	cs   *dg.ConstraintSet
	done map[pair]bool
	//skip returns true for pairs whose distance is set elsewhere.
	skip func(i, j int) bool
}

func newBounder(top chem.Bonder, ff *mmff.ForceField, skip func(i, j int) bool) *bounder {
	if skip == nil {
		skip = func(i, j int) bool { return false }
	}
	return &bounder{top: top, ff: ff, cs: dg.NewConstraintSet(), done: make(map[pair]bool), skip: skip}
}

func (B *bounder) add(i, j int, lower, upper float64, src dg.Source) error {
	p := mkpair(i, j)
	if B.done[p] || B.skip(i, j) {
		return nil
	}
	B.done[p] = true
	lower = math.Max(0, lower)
	if upper < lower {
		upper = lower
	}
	return B.cs.Add(i, j, lower, upper, src)
}

func (B *bounder) bondLength(i, j int) float64 {
	if r, ok := B.ff.ReferenceBondLength(i, j); ok {
		return r
	}
	r1, _ := chem.CovalentRadius(B.top.Atom(i).Symbol)
	r2, _ := chem.CovalentRadius(B.top.Atom(j).Symbol)
	return r1 + r2
}

func (B *bounder) angle(i, j, k int) float64 {
	if t, ok := B.ff.ReferenceAngle(i, j, k); ok {
		return chem.Deg2Rad(t)
	}
	return chem.Deg2Rad(109.47)
}

//cosineLaw returns the distance between the ends of two bonds of lengths a and b that form
//the angle theta.
func cosineLaw(a, b, theta float64) float64 {
	return math.Sqrt(math.Max(0, a*a+b*b-2*a*b*math.Cos(theta)))
}

//dist14 returns the i-l distance for the chain i-j-k-l with the dihedral phi.
func dist14(rij, rjk, rkl, t1, t2, phi float64) float64 {
	xi, yi := rij*math.Cos(t1), rij*math.Sin(t1)
	xl := rjk - rkl*math.Cos(t2)
	yl := rkl * math.Sin(t2) * math.Cos(phi)
	zl := rkl * math.Sin(t2) * math.Sin(phi)
	return math.Sqrt((xl-xi)*(xl-xi) + (yl-yi)*(yl-yi) + zl*zl)
}

//build adds, in this order, bond, 1-3, 1-4 and clash-avoidance bounds. A pair gets only
//the first bound that applies to it.
func (B *bounder) build() (*dg.ConstraintSet, error) {
	top := B.top
	for n := 0; n < top.NumBonds(); n++ {
		b := top.Bond(n)
		i, j := b.At1.Index, b.At2.Index
		r := B.bondLength(i, j)
		if err := B.add(i, j, r-bondTol, r+bondTol, dg.BondDerived); err != nil {
			return nil, err
		}
	}
	for j := 0; j < top.Len(); j++ {
		nb := top.Neighbors(j)
		for a := 0; a < len(nb); a++ {
			for c := a + 1; c < len(nb); c++ {
				i, k := nb[a], nb[c]
				d := cosineLaw(B.bondLength(i, j), B.bondLength(k, j), B.angle(i, j, k))
				if err := B.add(i, k, d-angleTol, d+angleTol, dg.AngleDerived); err != nil {
					return nil, err
				}
			}
		}
	}
	for n := 0; n < top.NumBonds(); n++ {
		b := top.Bond(n)
		j, k := b.At1.Index, b.At2.Index
		for _, i := range top.Neighbors(j) {
			if i == k {
				continue
			}
			for _, l := range top.Neighbors(k) {
				if l == j || l == i {
					continue
				}
				rij, rjk, rkl := B.bondLength(i, j), B.bondLength(j, k), B.bondLength(k, l)
				t1, t2 := B.angle(i, j, k), B.angle(j, k, l)
				cis := dist14(rij, rjk, rkl, t1, t2, 0)
				trans := dist14(rij, rjk, rkl, t1, t2, math.Pi)
				if err := B.add(i, l, math.Min(cis, trans)-torsionTol, math.Max(cis, trans)+torsionTol, dg.TorsionDerived); err != nil {
					return nil, err
				}
			}
		}
	}
	for i := 0; i < top.Len(); i++ {
		ri, _ := chem.VdwRadius(top.Atom(i).Symbol)
		for j := i + 1; j < top.Len(); j++ {
			rj, _ := chem.VdwRadius(top.Atom(j).Symbol)
			if err := B.add(i, j, clashScale*(ri+rj), math.Inf(1), dg.ClashAvoidance); err != nil {
				return nil, err
			}
		}
	}
	return B.cs, nil
}

//addRigid adds tight bounds that reproduce the distances among the atoms in atoms,
//taken from coords, where row n corresponds to atoms[n]. The pairs are then excluded
//from the other bounds, so addRigid must be called before build.
func (B *bounder) addRigid(atoms []int, coords *v3.Matrix, tol float64, src dg.Source) error {
	for a := 0; a < len(atoms); a++ {
		for c := a + 1; c < len(atoms); c++ {
			d := r3.Norm(r3.Sub(coords.Vec(a), coords.Vec(c)))
			if err := B.add(atoms[a], atoms[c], d-tol, d+tol, src); err != nil {
				return err
			}
		}
	}
	return nil
}
