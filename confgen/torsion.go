/*
 * torsion.go, part of goConf.
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
	"fmt"
	"math"

	chem "github.com/rmera/goconf"
	v3 "github.com/rmera/goconf/v3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

//Rotated samples where two atoms more than 3 bonds apart are closer than this fraction
//of the sum of their van der Waals radii are discarded.
const sampleClashScale = 0.5

//rotor is a rotatable bond. The atoms in moving rotate about the j-k axis.
type rotor struct {
	j, k   int
	moving []int
}

//torsionDriver samples the rotatable bonds of a molecule.
type torsionDriver struct {
	rotors []rotor
	steps  int
	//atom pairs checked for clashes, with the minimum distance allowed for each.
	pairs [][2]int
	mind  []float64
}

func newTorsionDriver(r *run) *torsionDriver {
	D := &torsionDriver{steps: max(1, int(math.Round(360/r.S.TorsionIncrement)))}
	for _, b := range r.graph.RotatableBonds() {
		j, k := b.At1.Index, b.At2.Index
		sj, sk := r.graph.SideOf(b, j), r.graph.SideOf(b, k)
		fj, fk := r.anyFixed(sj), r.anyFixed(sk)
		var rt rotor
		switch {
		case fj && fk:
			continue
		case fj:
			rt = rotor{j: j, k: k, moving: sk}
		case fk:
			rt = rotor{j: k, k: j, moving: sj}
		case len(sj) < len(sk):
			rt = rotor{j: k, k: j, moving: sj}
		default:
			rt = rotor{j: j, k: k, moving: sk}
		}
		D.rotors = append(D.rotors, rt)
	}
	dist := r.graph.Distances(3)
	n := r.top.Len()
	for i := 0; i < n; i++ {
		ri, _ := chem.VdwRadius(r.top.Atom(i).Symbol)
		for j := i + 1; j < n; j++ {
			if dist[i][j] != -1 || (r.isFixed != nil && r.isFixed[i] && r.isFixed[j]) {
				continue
			}
			rj, _ := chem.VdwRadius(r.top.Atom(j).Symbol)
			D.pairs = append(D.pairs, [2]int{i, j})
			D.mind = append(D.mind, sampleClashScale*(ri+rj))
		}
	}
	r.log.Debug("torsion driving", zap.Int("rotors", len(D.rotors)), zap.Int("steps", D.steps))
	return D
}

//combinations returns the step combinations to sample, at most budget of them. All
//of them are returned if they fit, otherwise a random subset, always including the
//unrotated one.
func (D *torsionDriver) combinations(r *run, budget int) [][]int {
	nr := len(D.rotors)
	total := 1
	for i := 0; i < nr && total <= budget; i++ {
		total *= D.steps
	}
	var ret [][]int
	if total <= budget {
		for idx := 0; idx < total; idx++ {
			c := make([]int, nr)
			v := idx
			for n := range c {
				c[n] = v % D.steps
				v /= D.steps
			}
			ret = append(ret, c)
		}
		return ret
	}
	seen := map[string]bool{}
	c := make([]int, nr)
	seen[fmt.Sprint(c)] = true
	ret = append(ret, c)
	for tries := 0; len(ret) < budget && tries < 10*budget; tries++ {
		c := make([]int, nr)
		for n := range c {
			c[n] = r.rng.IntN(D.steps)
		}
		key := fmt.Sprint(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		ret = append(ret, c)
	}
	return ret
}

//apply rotates, in place, each rotor of coords by its number of steps.
func (D *torsionDriver) apply(coords *v3.Matrix, combo []int) error {
	inc := 2 * math.Pi / float64(D.steps)
	for n, s := range combo {
		if s == 0 {
			continue
		}
		rt := D.rotors[n]
		a, b := coords.Vec(rt.j), coords.Vec(rt.k)
		if r3.Norm(r3.Sub(b, a)) < 1e-6 {
			return fmt.Errorf("atoms %d and %d overlap", rt.j, rt.k)
		}
		chem.RotateAbout(coords, a, b, float64(s)*inc, rt.moving)
	}
	return nil
}

func (D *torsionDriver) clashes(coords *v3.Matrix) bool {
	for n, p := range D.pairs {
		if r3.Norm(r3.Sub(coords.Vec(p[0]), coords.Vec(p[1]))) < D.mind[n] {
			return true
		}
	}
	return false
}

//drive returns up to budget torsional variants of base, the first of them being
//base itself. Rotated variants with steric clashes are dropped.
func (D *torsionDriver) drive(r *run, base *v3.Matrix, budget int) ([]*v3.Matrix, Status) {
	var ret []*v3.Matrix
	for n, combo := range D.combinations(r, budget) {
		if st, stop := r.interrupted(r.ctx); stop {
			return nil, st
		}
		c := base.Clone()
		if err := D.apply(c, combo); err != nil {
			r.log.Warn("torsion driving failed", zap.Error(err))
			return nil, TorsionDrivingFailed
		}
		if n > 0 && D.clashes(c) {
			continue
		}
		ret = append(ret, c)
	}
	return ret, Success
}
