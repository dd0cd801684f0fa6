/*
 * symmetry.go, part of goConf.
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

package chemgraph

import (
	"fmt"
	"sort"
	"strings"

	chem "github.com/rmera/goconf"
)

//Invariants returns, for each atom, a string that is equal for atoms that
//can be topologically equivalent. It is computed from the element, the atom type
//and the degree, refined with the invariants of the neighbors.
func (T *Topology) Invariants() []string {
	n := T.Len()
	inv := make([]string, n)
	for i := 0; i < n; i++ {
		at := T.Atom(i)
		inv[i] = fmt.Sprintf("%s.%d.%d.%d", at.Symbol, at.MMFFType, len(T.Neighbors(i)), at.FormalCharge)
	}
	//a few rounds of refinement are enough for the molecules we deal with.
	for round := 0; round < 4; round++ {
		next := make([]string, n)
		for i := 0; i < n; i++ {
			ns := T.Neighbors(i)
			nb := make([]string, 0, len(ns))
			for _, j := range ns {
				nb = append(nb, inv[j])
			}
			sort.Strings(nb)
			next[i] = inv[i] + "(" + strings.Join(nb, ",") + ")"
		}
		inv = compress(next)
	}
	return inv
}

//compress replaces each invariant by its rank among the distinct invariants.
func compress(inv []string) []string {
	u := append([]string(nil), inv...)
	sort.Strings(u)
	rank := make(map[string]int)
	for _, v := range u {
		if _, ok := rank[v]; !ok {
			rank[v] = len(rank)
		}
	}
	ret := make([]string, len(inv))
	for i, v := range inv {
		ret[i] = fmt.Sprint(rank[v])
	}
	return ret
}

//Automorphisms returns the topological symmetry mappings of the subgraph induced by the atoms
//in subset. Each mapping is a permutation of all the atom indexes (atoms not in the subset map
//to themselves). The identity is always the first mapping. If more than limit
//mappings exist, the first limit are returned, together with true.
func (T *Topology) Automorphisms(subset []int, limit int) ([][]int, bool) {
	n := T.Len()
	in := make([]bool, n)
	for _, i := range subset {
		in[i] = true
	}
	inv := T.Invariants()
	order := T.searchOrder(subset, in)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	used := make([]bool, n)
	var ret [][]int
	exceeded := false
	var assign func(k int)
	assign = func(k int) {
		if exceeded {
			return
		}
		if k == len(order) {
			if len(ret) >= limit {
				exceeded = true
				return
			}
			ret = append(ret, append([]int(nil), perm...))
			return
		}
		a := order[k]
		//trying the identity first puts it at the front of the results.
		candidates := append([]int{a}, subset...)
		for ci, c := range candidates {
			if ci > 0 && c == a {
				continue
			}
			if used[c] || inv[c] != inv[a] || !T.consistent(a, c, order[:k], perm) {
				continue
			}
			used[c] = true
			perm[a] = c
			assign(k + 1)
			used[c] = false
			perm[a] = a
		}
	}
	assign(0)
	return ret, exceeded
}

//consistent checks that mapping a to c preserves the bonds to the atoms already mapped.
func (T *Topology) consistent(a, c int, done []int, perm []int) bool {
	for _, b := range done {
		if (T.BondBetween(a, b) != nil) != (T.BondBetween(c, perm[b]) != nil) {
			return false
		}
	}
	return true
}

//searchOrder returns the subset atoms in breadth-first order, so each atom
//is assigned after one of its neighbors whenever possible.
func (T *Topology) searchOrder(subset []int, in []bool) []int {
	sorted := append([]int(nil), subset...)
	sort.Ints(sorted)
	seen := make(map[int]bool, len(sorted))
	ret := make([]int, 0, len(sorted))
	for _, s := range sorted {
		if seen[s] {
			continue
		}
		queue := []int{s}
		seen[s] = true
		for len(queue) > 0 {
			a := queue[0]
			queue = queue[1:]
			ret = append(ret, a)
			for _, nb := range T.Neighbors(a) {
				if in[nb] && !seen[nb] {
					seen[nb] = true
					queue = append(queue, nb)
				}
			}
		}
	}
	return ret
}

func atomLabel(T chem.Bonder, i int) string {
	at := T.Atom(i)
	return fmt.Sprintf("%s.%d.%d.%d", at.Symbol, at.MMFFType, len(T.Neighbors(i)), at.FormalCharge)
}

//Isomorphism returns a mapping m such that atom i of A corresponds to atom m[i] of B,
//preserving elements, atom types and bonds, and false if A and B are not isomorphic.
func Isomorphism(A, B chem.Bonder) ([]int, bool) {
	n := A.Len()
	if n != B.Len() || A.NumBonds() != B.NumBonds() {
		return nil, false
	}
	la := make([]string, n)
	lb := make([]string, n)
	for i := 0; i < n; i++ {
		la[i] = atomLabel(A, i)
		lb[i] = atomLabel(B, i)
	}
	in := make([]bool, n)
	all := make([]int, n)
	for i := range all {
		all[i] = i
		in[i] = true
	}
	ta := &Topology{Bonder: A}
	order := ta.searchOrder(all, in)
	m := make([]int, n)
	used := make([]bool, n)
	var assign func(k int) bool
	assign = func(k int) bool {
		if k == n {
			return true
		}
		a := order[k]
	candidates:
		for c := 0; c < n; c++ {
			if used[c] || la[a] != lb[c] {
				continue
			}
			for _, prev := range order[:k] {
				if (A.BondBetween(a, prev) != nil) != (B.BondBetween(c, m[prev]) != nil) {
					continue candidates
				}
			}
			used[c] = true
			m[a] = c
			if assign(k + 1) {
				return true
			}
			used[c] = false
		}
		return false
	}
	if !assign(0) {
		return nil, false
	}
	return m, true
}
