/*
 * select.go, part of goConf.
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
	"sort"

	chem "github.com/rmera/goconf"
	"github.com/rmera/goconf/chemgraph"
	v3 "github.com/rmera/goconf/v3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

//Comparer measures the distance between conformers of one molecule as the heavy-atom RMSD
//(all atoms, for molecules with no heavy atoms), minimized over the topological symmetry
//mappings of the molecule.
type Comparer struct {
	atoms []int
	perms [][]int
	align bool
	//Exceeded is true if the molecule had more symmetry mappings than allowed, in which
	//case only the identity mapping is used.
	Exceeded bool
}

//NewComparer returns a Comparer for the molecule T. If align is true, conformers are superimposed
//before each comparison. At most maxMappings symmetry mappings are considered.
func NewComparer(T *chemgraph.Topology, align bool, maxMappings int) *Comparer {
	C := &Comparer{align: align}
	for i := 0; i < T.Len(); i++ {
		if T.Atom(i).Heavy() {
			C.atoms = append(C.atoms, i)
		}
	}
	if len(C.atoms) == 0 {
		C.atoms = allAtoms(T.Len())
	}
	C.perms, C.Exceeded = T.Automorphisms(C.atoms, maxMappings)
	if C.Exceeded || len(C.perms) == 0 {
		C.perms = [][]int{allAtoms(T.Len())}
	}
	return C
}

func allAtoms(n int) []int {
	ret := make([]int, n)
	for i := range ret {
		ret[i] = i
	}
	return ret
}

//NumMappings returns the number of symmetry mappings in use.
func (C *Comparer) NumMappings() int {
	return len(C.perms)
}

//RMSD returns the smallest RMSD between a and b over the symmetry mappings.
func (C *Comparer) RMSD(a, b *v3.Matrix) float64 {
	best := math.Inf(1)
	mapped := make([]int, len(C.atoms))
	for _, p := range C.perms {
		for n, i := range C.atoms {
			mapped[n] = p[i]
		}
		test := a
		if C.align {
			sup, err := chem.Super(a, b, C.atoms, mapped)
			if err != nil {
				continue
			}
			test = sup
		}
		var sum float64
		for n, i := range C.atoms {
			sum += r3.Norm2(r3.Sub(test.Vec(i), b.Vec(mapped[n])))
		}
		best = math.Min(best, math.Sqrt(sum/float64(len(C.atoms))))
	}
	return best
}

//sortByEnergy sorts confs and es together, lowest energy first. The sort is stable.
func sortByEnergy(confs []*v3.Matrix, es []float64) {
	idx := allAtoms(len(confs))
	sort.SliceStable(idx, func(i, j int) bool { return es[idx[i]] < es[idx[j]] })
	c2 := make([]*v3.Matrix, len(confs))
	e2 := make([]float64, len(es))
	for n, i := range idx {
		c2[n], e2[n] = confs[i], es[i]
	}
	copy(confs, c2)
	copy(es, e2)
}

//selectConformers keeps, in order of increasing energy, the candidates within the energy window of the
//lowest one that are at least MinRMSD away from all the conformers already kept.
func (G *Generator) selectConformers(r *run, cands []*v3.Matrix, es []float64) ([]*v3.Matrix, []float64, Status) {
	var confs []*v3.Matrix
	var energies []float64
	for i, c := range cands {
		if math.IsNaN(es[i]) || math.IsInf(es[i], 0) {
			continue
		}
		confs = append(confs, c)
		energies = append(energies, es[i])
	}
	if len(confs) == 0 {
		return nil, nil, ForceFieldMinimizationFailed
	}
	sortByEnergy(confs, energies)
	C := NewComparer(r.graph, len(r.fixed) == 0, r.S.MaxNumSymmetryMappings)
	st := Success
	if C.Exceeded {
		r.log.Warn("too many symmetry mappings, using only the identity", zap.Int("limit", r.S.MaxNumSymmetryMappings))
		st = TooMuchSymmetry
	}
	emin := energies[0]
	var kept []*v3.Matrix
	var keptE []float64
	for i, c := range confs {
		if len(kept) >= r.S.MaxNumOutputConformers {
			break
		}
		if energies[i]-emin > r.S.EnergyWindow {
			break
		}
		if i%64 == 0 {
			if s, stop := r.interrupted(r.ctx); stop {
				return nil, nil, s
			}
		}
		distinct := true
		for _, k := range kept {
			if C.RMSD(c, k) < r.S.MinRMSD {
				distinct = false
				break
			}
		}
		if distinct {
			kept = append(kept, c)
			keptE = append(keptE, energies[i])
		}
	}
	r.log.Debug("selection", zap.Int("candidates", len(confs)), zap.Int("kept", len(kept)), zap.Int("mappings", C.NumMappings()))
	return kept, keptE, st
}
