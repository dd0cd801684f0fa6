/*
 * depict.go, part of goConf.
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
	"github.com/rmera/goconf/chemgraph"
	"github.com/rmera/goconf/dg"
	v3 "github.com/rmera/goconf/v3"
	"gonum.org/v1/gonum/mat"
)

//Depiction geometry, in A. All bonds get the same length and all angles are
//as close to 120 degrees as the connectivity allows.
const (
	depictBond     = 1.5
	depictTol      = 0.05
	depictMinDist  = 2.4
	depictAttempts = 4
)

//Depict returns 2D coordinates for top, suitable for drawing the molecule. Rings are
//drawn as regular polygons. The z coordinate of every atom is 0. The same seed gives
//the same layout.
func Depict(top chem.Bonder, seed uint64) (*v3.Matrix, error) {
	n := top.Len()
	if n == 0 {
		return nil, newError(ErrInvalidInput, "empty molecule", "Depict")
	}
	cs, err := depictBounds(top)
	if err != nil {
		return nil, errDecorate(err, "Depict")
	}
	var best *mat.Dense
	bestviol := math.Inf(1)
	for a := 0; a < depictAttempts; a++ {
		L, err := dg.NewLayout(2)
		if err != nil {
			return nil, errDecorate(err, "Depict")
		}
		L.SetConstraints(cs)
		L.SetRandomSeed(seed*rngMix + uint64(a)*fragSeedStep)
		if err := L.SetBoxSize(math.Max(5, 2*math.Sqrt(float64(n)))); err != nil {
			return nil, errDecorate(err, "Depict")
		}
		c, err := L.Generate(n)
		if err != nil {
			return nil, errDecorate(err, "Depict")
		}
		if v := cs.Violation(c); v < bestviol {
			best, bestviol = c, v
		}
	}
	ret := v3.Zeros(n)
	for i := 0; i < n; i++ {
		ret.Set(i, 0, best.At(i, 0))
		ret.Set(i, 1, best.At(i, 1))
	}
	ret.SubVec(ret, ret.Centroid())
	return ret, nil
}

//depictBounds builds the 2D distance bounds of top. Ring pairs get the distances of a
//regular polygon. A pair gets only the first bound that applies to it.
func depictBounds(top chem.Bonder) (*dg.ConstraintSet, error) {
	B := newBounder(top, nil, nil)
	G := chemgraph.New(top)
	for _, ring := range G.Rings() {
		m := len(ring)
		R := depictBond / (2 * math.Sin(math.Pi/float64(m)))
		for a := 0; a < m; a++ {
			for c := a + 1; c < m; c++ {
				k := c - a
				d := 2 * R * math.Sin(float64(k)*math.Pi/float64(m))
				if err := B.add(ring[a], ring[c], d-depictTol, d+depictTol, dg.RingDerived); err != nil {
					return nil, err
				}
			}
		}
	}
	for n := 0; n < top.NumBonds(); n++ {
		b := top.Bond(n)
		if err := B.add(b.At1.Index, b.At2.Index, depictBond-depictTol, depictBond+depictTol, dg.BondDerived); err != nil {
			return nil, err
		}
	}
	for j := 0; j < top.Len(); j++ {
		nb := top.Neighbors(j)
		theta, upper := 2*math.Pi/3, depictTol
		if len(nb) > 3 {
			//only the angle between consecutive substituents is known.
			theta, upper = 2*math.Pi/float64(len(nb)), math.Inf(1)
		}
		d := cosineLaw(depictBond, depictBond, theta)
		for a := 0; a < len(nb); a++ {
			for c := a + 1; c < len(nb); c++ {
				if err := B.add(nb[a], nb[c], d-depictTol, d+upper, dg.AngleDerived); err != nil {
					return nil, err
				}
			}
		}
	}
	dist := G.Distances(3)
	t := 2 * math.Pi / 3
	cis := dist14(depictBond, depictBond, depictBond, t, t, 0)
	trans := dist14(depictBond, depictBond, depictBond, t, t, math.Pi)
	for i := 0; i < top.Len(); i++ {
		for j := i + 1; j < top.Len(); j++ {
			var err error
			switch dist[i][j] {
			case 3:
				err = B.add(i, j, cis-depictTol, trans+depictTol, dg.TorsionDerived)
			case -1:
				err = B.add(i, j, depictMinDist, math.Inf(1), dg.ClashAvoidance)
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return B.cs, nil
}
