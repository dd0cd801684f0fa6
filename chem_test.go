/*
 * chem_test.go, part of goConf.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package chem

import (
	"math"
	"testing"

	v3 "github.com/rmera/goconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

//ethane-like chain of 4 carbons, no hydrogens.
func butaneSkeleton(Te *testing.T) (*Topology, *v3.Matrix) {
	top := NewTopology(0, 1)
	for i := 0; i < 4; i++ {
		top.AddAtom(&Atom{Symbol: "C", Name: "C", MMFFType: 1, Hyb: SP3})
	}
	for i := 0; i < 3; i++ {
		_, err := top.AddBond(i, i+1, 1)
		require.NoError(Te, err)
	}
	coords, err := v3.NewMatrix([]float64{
		1.5, 1, 0,
		0, 0.5, 0,
		0, -1, 0,
		-1.5, -1.5, 0,
	})
	require.NoError(Te, err)
	return top, coords
}

func TestTopology(Te *testing.T) {
	top, _ := butaneSkeleton(Te)
	assert.Equal(Te, 4, top.Len())
	assert.Equal(Te, 3, top.NumBonds())
	assert.Equal(Te, []int{0, 2}, top.Neighbors(1))
	assert.NotNil(Te, top.BondBetween(2, 1))
	assert.Nil(Te, top.BondBetween(0, 3))
	_, err := top.AddBond(0, 1, 1)
	assert.Error(Te, err)
	_, err = top.AddBond(0, 0, 1)
	assert.Error(Te, err)
	_, err = top.AddBond(0, 9, 1)
	assert.Error(Te, err)
	cp := top.Copy()
	cp.Atom(0).Symbol = "N"
	assert.Equal(Te, "C", top.Atom(0).Symbol)
	assert.Equal(Te, 3, cp.NumBonds())
	assert.Equal(Te, []int{0, 1, 2, 3}, top.HeavyAtoms())
}

func TestMolecule(Te *testing.T) {
	top, coords := butaneSkeleton(Te)
	mol, err := NewMolecule(top, []*v3.Matrix{coords})
	require.NoError(Te, err)
	assert.Equal(Te, 1, mol.LenFrames())
	err = mol.SetFrames([]*v3.Matrix{coords, coords.Clone()}, []float64{1})
	assert.Error(Te, err)
	require.NoError(Te, mol.SetFrames([]*v3.Matrix{coords, coords.Clone()}, []float64{1, 2}))
	assert.Equal(Te, 2, mol.LenFrames())
	_, err = NewMolecule(top, []*v3.Matrix{v3.Zeros(3)})
	assert.Error(Te, err)
}

func TestDihedralAndRotation(Te *testing.T) {
	_, coords := butaneSkeleton(Te)
	d := Dihedral(coords.Vec(0), coords.Vec(1), coords.Vec(2), coords.Vec(3))
	assert.InDelta(Te, math.Pi, math.Abs(d), 1e-9)
	RotateAbout(coords, coords.Vec(1), coords.Vec(2), Deg2Rad(120), []int{3})
	d = Dihedral(coords.Vec(0), coords.Vec(1), coords.Vec(2), coords.Vec(3))
	assert.InDelta(Te, 60, math.Abs(Rad2Deg(d)), 1e-6)
	//the rotated atom keeps its distance to the axis atom.
	assert.InDelta(Te, math.Sqrt(1.5*1.5+0.5*0.5), r3.Norm(r3.Sub(coords.Vec(3), coords.Vec(2))), 1e-9)
	assert.InDelta(Te, 90, Rad2Deg(BondAngle(r3.Vec{X: 1}, r3.Vec{}, r3.Vec{Y: 1})), 1e-9)
}

func TestSuper(Te *testing.T) {
	_, coords := butaneSkeleton(Te)
	moved := coords.Clone()
	RotateAbout(moved, r3.Vec{}, r3.Vec{X: 1, Y: 2, Z: 3}, 1.1, []int{0, 1, 2, 3})
	moved.AddVec(moved, r3.Vec{X: 3, Y: -2, Z: 7})
	rmsd, err := RMSD(moved, coords)
	require.NoError(Te, err)
	assert.Greater(Te, rmsd, 1.0)
	aligned, err := AlignedRMSD(moved, coords, nil)
	require.NoError(Te, err)
	assert.InDelta(Te, 0, aligned, 1e-8)
	_, err = Super(moved, coords, []int{0, 1}, []int{0})
	assert.Error(Te, err)
}

func TestAssignBonds(Te *testing.T) {
	top := NewTopology(0, 1)
	for _, s := range []string{"O", "H", "H"} {
		top.AddAtom(&Atom{Symbol: s})
	}
	coords, err := v3.NewMatrix([]float64{
		0, 0, 0,
		0.96, 0, 0,
		-0.24, 0.93, 0,
	})
	require.NoError(Te, err)
	require.NoError(Te, AssignBonds(coords, top))
	assert.Equal(Te, 2, top.NumBonds())
	assert.Nil(Te, top.BondBetween(1, 2))
}
