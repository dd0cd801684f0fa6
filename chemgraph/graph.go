/*
 * graph.go, part of goConf.
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

//Package chemgraph analyses the bond graph of a molecule: rings, ring systems,
//rotatable bonds, topological distances and symmetry mappings.
package chemgraph

import (
	"math/bits"
	"sort"

	chem "github.com/rmera/goconf"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

//Topology wraps a chem.Bonder and its bond graph. Node IDs are atom indexes.
type Topology struct {
	chem.Bonder
	g         *simple.UndirectedGraph
	ringBonds []bool
	ringAtoms []bool
	rings     [][]int
}

//New builds the graph for the topology T and perceives its rings.
func New(T chem.Bonder) *Topology {
	g := simple.NewUndirectedGraph()
	for i := 0; i < T.Len(); i++ {
		g.AddNode(simple.Node(i))
	}
	for i := 0; i < T.NumBonds(); i++ {
		b := T.Bond(i)
		g.SetEdge(simple.Edge{F: simple.Node(b.At1.Index), T: simple.Node(b.At2.Index)})
	}
	ret := &Topology{Bonder: T, g: g}
	ret.perceiveRings()
	return ret
}

//Graph returns the underlying gonum graph.
func (T *Topology) Graph() graph.Undirected {
	return T.g
}

func (T *Topology) perceiveRings() {
	T.ringBonds = make([]bool, T.NumBonds())
	T.ringAtoms = make([]bool, T.Len())
	var basis [][]int
	for _, c := range topo.UndirectedCyclesIn(T.g) {
		//the first node is repeated at the end of the cycle.
		ring := make([]int, 0, len(c)-1)
		for i := 0; i < len(c)-1; i++ {
			a, b := int(c[i].ID()), int(c[i+1].ID())
			ring = append(ring, a)
			T.ringAtoms[a] = true
			if bond := T.BondBetween(a, b); bond != nil {
				T.ringBonds[bond.Index] = true
			}
		}
		basis = append(basis, ring)
	}
	T.rings = T.smallestRings(basis)
	sort.Slice(T.rings, func(i, j int) bool {
		return lessInts(T.rings[i], T.rings[j])
	})
}

//smallestRings turns a cycle basis into a smallest set of smallest rings. The
//shortest cycle through each ring bond is a candidate, and so is each basis cycle.
//Candidates are taken shortest first, and kept if they are independent (over GF(2)
//on the bond set) from the ones already kept, until there are as many as in the basis.
func (T *Topology) smallestRings(basis [][]int) [][]int {
	if len(basis) == 0 {
		return nil
	}
	cands := make([][]int, 0, len(basis)+T.NumBonds())
	for i := 0; i < T.NumBonds(); i++ {
		if !T.ringBonds[i] {
			continue
		}
		b := T.Bond(i)
		if p := T.ringPath(b.At1.Index, b.At2.Index); p != nil {
			cands = append(cands, p)
		}
	}
	cands = append(cands, basis...)
	for i, c := range cands {
		cands[i] = canonicalRing(c)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if len(cands[i]) != len(cands[j]) {
			return len(cands[i]) < len(cands[j])
		}
		return lessInts(cands[i], cands[j])
	})
	words := (T.NumBonds() + 63) / 64
	var rows [][]uint64
	var pivots []int
	ret := make([][]int, 0, len(basis))
	for _, c := range cands {
		if len(ret) == len(basis) {
			break
		}
		v := make([]uint64, words)
		for i, a := range c {
			bond := T.BondBetween(a, c[(i+1)%len(c)])
			v[bond.Index/64] ^= 1 << uint(bond.Index%64)
		}
		//each pivot is set only in its own row, so one pass reduces v.
		for n, row := range rows {
			if v[pivots[n]/64]&(1<<uint(pivots[n]%64)) != 0 {
				xorInto(v, row)
			}
		}
		p := lowestBit(v)
		if p < 0 {
			continue
		}
		for n, row := range rows {
			if row[p/64]&(1<<uint(p%64)) != 0 {
				xorInto(rows[n], v)
			}
		}
		rows = append(rows, v)
		pivots = append(pivots, p)
		ret = append(ret, c)
	}
	return ret
}

//ringPath returns the shortest path from a to b over ring bonds, not using the a-b
//bond itself, or nil if there is none.
func (T *Topology) ringPath(a, b int) []int {
	prev := make([]int, T.Len())
	for i := range prev {
		prev[i] = -1
	}
	prev[a] = a
	queue := []int{a}
	for len(queue) > 0 && prev[b] < 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range T.Neighbors(cur) {
			if prev[nb] >= 0 || (cur == a && nb == b) || !T.ringBonds[T.BondBetween(cur, nb).Index] {
				continue
			}
			prev[nb] = cur
			queue = append(queue, nb)
		}
	}
	if prev[b] < 0 {
		return nil
	}
	var path []int
	for at := b; at != a; at = prev[at] {
		path = append(path, at)
	}
	return append(path, a)
}

func xorInto(dst, src []uint64) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

func lowestBit(v []uint64) int {
	for i, w := range v {
		if w != 0 {
			return i*64 + bits.TrailingZeros64(w)
		}
	}
	return -1
}

//canonicalRing rotates the ring so it starts at its smallest atom and
//goes towards the smaller of its two neighbors.
func canonicalRing(ring []int) []int {
	n := len(ring)
	min := 0
	for i, v := range ring {
		if v < ring[min] {
			min = i
		}
	}
	ret := make([]int, n)
	step := 1
	if ring[(min-1+n)%n] < ring[(min+1)%n] {
		step = -1
	}
	for i := 0; i < n; i++ {
		ret[i] = ring[((min+step*i)%n+n)%n]
	}
	return ret
}

func lessInts(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

//Rings returns the smallest set of smallest rings, each as a list of atom indexes in ring order.
func (T *Topology) Rings() [][]int {
	return T.rings
}

//InRing returns true if the bond with the given index is part of a ring.
func (T *Topology) InRing(bond int) bool {
	return T.ringBonds[bond]
}

//AtomInRing returns true if the atom i is part of a ring.
func (T *Topology) AtomInRing(i int) bool {
	return T.ringAtoms[i]
}

//RingSystems returns the sets of atoms forming ring systems, i.e. rings connected
//by shared atoms or bonds. Each set is sorted, and the sets are sorted by their first atom.
func (T *Topology) RingSystems() [][]int {
	rg := simple.NewUndirectedGraph()
	for i := 0; i < T.NumBonds(); i++ {
		if !T.ringBonds[i] {
			continue
		}
		b := T.Bond(i)
		rg.SetEdge(simple.Edge{F: simple.Node(b.At1.Index), T: simple.Node(b.At2.Index)})
	}
	var ret [][]int
	for _, c := range topo.ConnectedComponents(rg) {
		sys := make([]int, 0, len(c))
		for _, n := range c {
			sys = append(sys, int(n.ID()))
		}
		sort.Ints(sys)
		ret = append(ret, sys)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}

//RotatableBonds returns the bonds around which torsion driving makes sense: single,
//acyclic bonds between non-linear atoms, where each end has at least another
//neighbor and is not a terminal group of three hydrogens.
func (T *Topology) RotatableBonds() []*chem.Bond {
	var ret []*chem.Bond
	for i := 0; i < T.NumBonds(); i++ {
		b := T.Bond(i)
		if T.ringBonds[i] || (b.Order != 1 && b.Order != 0) {
			continue
		}
		if !T.rotatableEnd(b.At1, b.At2) || !T.rotatableEnd(b.At2, b.At1) {
			continue
		}
		ret = append(ret, b)
	}
	return ret
}

func (T *Topology) rotatableEnd(at, other *chem.Atom) bool {
	if at.Hyb == chem.SP {
		return false
	}
	heavy, hydrogens := 0, 0
	for _, n := range T.Neighbors(at.Index) {
		if n == other.Index {
			continue
		}
		if T.Atom(n).Heavy() {
			heavy++
		} else {
			hydrogens++
		}
	}
	if heavy+hydrogens == 0 {
		return false
	}
	return !(heavy == 0 && hydrogens == 3)
}

//SideOf returns the sorted indexes of the atoms on the side of atom of the bond b,
//i.e. those reachable from atom without crossing b. atom is included.
func (T *Topology) SideOf(b *chem.Bond, atom int) []int {
	f, t := int64(b.At1.Index), int64(b.At2.Index)
	w := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			u, v := e.From().ID(), e.To().ID()
			return !((u == f && v == t) || (u == t && v == f))
		},
	}
	var ret []int
	w.Walk(T.g, simple.Node(atom), func(n graph.Node, _ int) bool {
		ret = append(ret, int(n.ID()))
		return false
	})
	sort.Ints(ret)
	return ret
}

//Distances returns the matrix of topological distances (number of bonds) between atoms.
//Pairs farther than maxDepth bonds apart, or disconnected, get -1.
func (T *Topology) Distances(maxDepth int) [][]int {
	n := T.Len()
	ret := make([][]int, n)
	for i := range ret {
		ret[i] = make([]int, n)
		for j := range ret[i] {
			ret[i][j] = -1
		}
		var w traverse.BreadthFirst
		w.Walk(T.g, simple.Node(i), func(node graph.Node, d int) bool {
			if d > maxDepth {
				return true
			}
			ret[i][node.ID()] = d
			return false
		})
	}
	return ret
}

//Fragments returns the connected components of the molecule, each sorted.
func (T *Topology) Fragments() [][]int {
	var ret [][]int
	for _, c := range topo.ConnectedComponents(T.g) {
		f := make([]int, 0, len(c))
		for _, n := range c {
			f = append(f, int(n.ID()))
		}
		sort.Ints(f)
		ret = append(ret, f)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}
