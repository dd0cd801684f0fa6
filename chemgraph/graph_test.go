/*
 * graph_test.go, part of goConf.
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
	"testing"

	chem "github.com/rmera/goconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//cyclohexylethane skeleton: ring atoms 0-5, chain 0-6-7-8.
func ringWithChain(Te *testing.T) *chem.Topology {
	top := chem.NewTopology(0, 1)
	for i := 0; i < 9; i++ {
		top.AddAtom(&chem.Atom{Symbol: "C", MMFFType: 1, Hyb: chem.SP3})
	}
	bonds := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 0}, {0, 6}, {6, 7}, {7, 8}}
	for _, b := range bonds {
		_, err := top.AddBond(b[0], b[1], 1)
		require.NoError(Te, err)
	}
	return top
}

func TestRings(Te *testing.T) {
	T := New(ringWithChain(Te))
	require.Len(Te, T.Rings(), 1)
	assert.Equal(Te, []int{0, 1, 2, 3, 4, 5}, T.Rings()[0])
	assert.Equal(Te, [][]int{{0, 1, 2, 3, 4, 5}}, T.RingSystems())
	for i := 0; i < 6; i++ {
		assert.True(Te, T.InRing(i))
		assert.True(Te, T.AtomInRing(i))
	}
	assert.False(Te, T.InRing(6))
	assert.False(Te, T.AtomInRing(7))
	assert.Len(Te, T.Fragments(), 1)
}

func TestFusedRingSystem(Te *testing.T) {
	//decalin skeleton: two rings sharing the 0-5 bond, plus a separate cyclopropane.
	top := chem.NewTopology(0, 1)
	for i := 0; i < 13; i++ {
		top.AddAtom(&chem.Atom{Symbol: "C", MMFFType: 1})
	}
	bonds := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 0}, {5, 6}, {6, 7}, {7, 8}, {8, 9}, {9, 0}, {10, 11}, {11, 12}, {12, 10}}
	for _, b := range bonds {
		_, err := top.AddBond(b[0], b[1], 1)
		require.NoError(Te, err)
	}
	T := New(top)
	assert.Len(Te, T.Rings(), 3)
	sys := T.RingSystems()
	require.Len(Te, sys, 2)
	assert.Equal(Te, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, sys[0])
	assert.Equal(Te, []int{10, 11, 12}, sys[1])
	assert.Len(Te, T.Fragments(), 2)
}

func TestSmallestRings(Te *testing.T) {
	build := func(n int, bonds [][2]int) *Topology {
		top := chem.NewTopology(0, 1)
		for i := 0; i < n; i++ {
			top.AddAtom(&chem.Atom{Symbol: "C", MMFFType: 1})
		}
		for _, b := range bonds {
			_, err := top.AddBond(b[0], b[1], 1)
			require.NoError(Te, err)
		}
		return New(top)
	}
	//three fused squares: the 6- and 8-membered envelopes must not show up.
	ladder := build(8, [][2]int{{0, 1}, {1, 2}, {2, 3}, {4, 5}, {5, 6}, {6, 7}, {0, 4}, {1, 5}, {2, 6}, {3, 7}})
	assert.Equal(Te, [][]int{{0, 1, 5, 4}, {1, 2, 6, 5}, {2, 3, 7, 6}}, ladder.Rings())
	for i := 0; i < 10; i++ {
		assert.True(Te, ladder.InRing(i))
	}
	//bicyclo[2.2.2]octane: bridgeheads 0 and 1, three 2-carbon bridges.
	bco := build(8, [][2]int{{0, 2}, {2, 3}, {3, 1}, {0, 4}, {4, 5}, {5, 1}, {0, 6}, {6, 7}, {7, 1}})
	require.Len(Te, bco.Rings(), 2)
	for _, r := range bco.Rings() {
		assert.Len(Te, r, 6)
	}
	//naphthalene-like skeleton: two 6-rings, never the 10-membered perimeter.
	dec := build(10, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 0}, {5, 6}, {6, 7}, {7, 8}, {8, 9}, {9, 0}})
	assert.Equal(Te, [][]int{{0, 1, 2, 3, 4, 5}, {0, 5, 6, 7, 8, 9}}, dec.Rings())
}

func TestRotatableAndSides(Te *testing.T) {
	T := New(ringWithChain(Te))
	rot := T.RotatableBonds()
	//0-6 and 6-7 are rotatable. 7-8 has a terminal atom.
	require.Len(Te, rot, 2)
	assert.Equal(Te, 6, rot[0].Index)
	assert.Equal(Te, 7, rot[1].Index)
	side := T.SideOf(rot[0], 6)
	assert.Equal(Te, []int{6, 7, 8}, side)
	side = T.SideOf(rot[0], 0)
	assert.Equal(Te, []int{0, 1, 2, 3, 4, 5}, side)
	//ring bonds don't split the molecule.
	assert.Len(Te, T.SideOf(T.Bond(0), 0), 9)
}

func TestDistances(Te *testing.T) {
	T := New(ringWithChain(Te))
	d := T.Distances(3)
	assert.Equal(Te, 0, d[4][4])
	assert.Equal(Te, 1, d[0][6])
	assert.Equal(Te, 3, d[3][0])
	assert.Equal(Te, 3, d[0][8])
	assert.Equal(Te, -1, d[8][3])
	assert.Equal(Te, 2, d[1][6])
}

func TestAutomorphisms(Te *testing.T) {
	top := chem.NewTopology(0, 1)
	for i := 0; i < 6; i++ {
		top.AddAtom(&chem.Atom{Symbol: "C", MMFFType: 1})
	}
	for i := 0; i < 6; i++ {
		_, err := top.AddBond(i, (i+1)%6, 1)
		require.NoError(Te, err)
	}
	T := New(top)
	all := []int{0, 1, 2, 3, 4, 5}
	maps, exceeded := T.Automorphisms(all, 100)
	assert.False(Te, exceeded)
	assert.Len(Te, maps, 12)
	assert.Equal(Te, all, maps[0])
	maps, exceeded = T.Automorphisms(all, 5)
	assert.True(Te, exceeded)
	assert.Len(Te, maps, 5)
	//the chain breaks the symmetry down to the mirror plane through 0 and 3.
	chain := ringWithChain(Te)
	C := New(chain)
	maps, exceeded = C.Automorphisms(chain.HeavyAtoms(), 100)
	assert.False(Te, exceeded)
	assert.Len(Te, maps, 2)
}

func TestIsomorphism(Te *testing.T) {
	top := ringWithChain(Te)
	ring := top.SubTopology([]int{0, 1, 2, 3, 4, 5})
	assert.Equal(Te, 6, ring.NumBonds())
	//the same ring, numbered backwards.
	rev := top.SubTopology([]int{5, 4, 3, 2, 1, 0})
	m, ok := Isomorphism(ring, rev)
	require.True(Te, ok)
	for _, b := range ring.Bonds {
		assert.NotNil(Te, rev.BondBetween(m[b.At1.Index], m[b.At2.Index]))
	}
	chain := top.SubTopology([]int{0, 6, 7, 8})
	_, ok = Isomorphism(ring, chain)
	assert.False(Te, ok)
	other := ring.Copy()
	other.Atom(2).MMFFType = 37
	_, ok = Isomorphism(ring, other)
	assert.False(Te, ok)
}
