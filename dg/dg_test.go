/*
 * dg_test.go, part of goConf.
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

package dg

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestConstraintValidation(Te *testing.T) {
	C := NewConstraintSet()
	bad := [][4]float64{
		{0, 1, 2, 1},    //lower>upper
		{0, 1, -1, 1},   //negative lower
		{0, 1, 1, -1},   //negative upper
		{1, 1, 1, 2},    //same point
		{-1, 1, 1, 2},   //negative index
		{0, 1, math.NaN(), 1},
	}
	for _, b := range bad {
		err := C.Add(int(b[0]), int(b[1]), b[2], b[3])
		require.Error(Te, err, "%v", b)
		assert.True(Te, errors.Is(err, ErrInvalidArgument))
	}
	assert.Equal(Te, 0, C.Len())
	require.NoError(Te, C.Add(0, 1, 1, 1))
	require.NoError(Te, C.Add(1, 2, 1, 2, BondDerived))
	require.NoError(Te, C.Add(2, 7, 0, math.Inf(1), ClashAvoidance))
	assert.Equal(Te, 3, C.Len())
	c, ok := C.At(1)
	assert.True(Te, ok)
	assert.Equal(Te, BondDerived, c.Source)
	_, ok = C.At(3)
	assert.False(Te, ok)
	err := C.Validate(5)
	assert.True(Te, errors.Is(err, ErrIndexOutOfRange))
	assert.NoError(Te, C.Validate(8))

	err = C.Remove(3)
	assert.True(Te, errors.Is(err, ErrIndexOutOfRange))
	require.NoError(Te, C.Remove(0))
	c, _ = C.At(0)
	assert.Equal(Te, 2, c.Point2)
	C.Clear()
	assert.Equal(Te, 0, C.Len())
}

func TestLayoutSettings(Te *testing.T) {
	_, err := NewLayout(4)
	assert.True(Te, errors.Is(err, ErrInvalidArgument))
	L, err := NewLayout(3)
	require.NoError(Te, err)
	assert.Error(Te, L.SetNumCycles(0))
	assert.Error(Te, L.SetCycleStepCountFactor(0))
	assert.Error(Te, L.SetStartLearningRate(1.5))
	assert.Error(Te, L.SetLearningRateDecrement(-1))
	assert.Error(Te, L.SetFixedPoint(0, []float64{1, 2}))
	assert.InDelta(Te, 1.0, L.LearningRate(0), 1e-12)
	assert.InDelta(Te, 0.82, L.LearningRate(10), 1e-12)
	assert.InDelta(Te, MinLearningRate, L.LearningRate(1000), 1e-12)
	_, err = L.Generate(0)
	assert.True(Te, errors.Is(err, ErrDegenerateInput))
	require.NoError(Te, L.AddDistanceConstraint(0, 5, 1, 2))
	_, err = L.Generate(3)
	assert.True(Te, errors.Is(err, ErrIndexOutOfRange))
}

func chainLayout(Te *testing.T, dim int) *Layout {
	L, err := NewLayout(dim)
	require.NoError(Te, err)
	for i := 0; i < 4; i++ {
		require.NoError(Te, L.AddDistanceConstraint(i, i+1, 1.5, 1.5))
	}
	require.NoError(Te, L.AddDistanceConstraint(0, 4, 2.0, 6.0))
	return L
}

func TestChainEndToEnd(Te *testing.T) {
	L := chainLayout(Te, 2)
	L.SetRandomSeed(42)
	require.NoError(Te, L.SetNumCycles(50))
	coords, err := L.Generate(5)
	require.NoError(Te, err)
	r, c := coords.Dims()
	assert.Equal(Te, 5, r)
	assert.Equal(Te, 2, c)
	for i := 0; i < 4; i++ {
		assert.InDelta(Te, 1.5, rowDistance(coords, i, i+1), 1e-2)
	}
	assert.Less(Te, L.DistanceError(coords), 0.01)
}

func TestReproducibility(Te *testing.T) {
	for _, dim := range []int{2, 3} {
		L := chainLayout(Te, dim)
		L.SetRandomSeed(1234)
		a, err := L.Generate(5)
		require.NoError(Te, err)
		b, err := L.Generate(5)
		require.NoError(Te, err)
		assert.True(Te, mat.Equal(a, b))
		L.SetRandomSeed(4321)
		c, err := L.Generate(5)
		require.NoError(Te, err)
		assert.False(Te, mat.Equal(a, c))
	}
}

func TestMoreCyclesNoWorse(Te *testing.T) {
	//a ring of 8 points, which is harder than a chain.
	var short, long float64
	const trials = 20
	for seed := uint64(0); seed < trials; seed++ {
		for _, n := range []int{10, 100} {
			L, err := NewLayout(3)
			require.NoError(Te, err)
			for i := 0; i < 8; i++ {
				require.NoError(Te, L.AddDistanceConstraint(i, (i+1)%8, 1.5, 1.5))
				require.NoError(Te, L.AddDistanceConstraint(i, (i+2)%8, 2.4, 2.6))
			}
			L.SetRandomSeed(seed)
			require.NoError(Te, L.SetNumCycles(n))
			coords, err := L.Generate(8)
			require.NoError(Te, err)
			if n == 10 {
				short += L.DistanceError(coords)
			} else {
				long += L.DistanceError(coords)
			}
		}
	}
	assert.LessOrEqual(Te, long/trials, short/trials+1e-6)
}

func TestFixedPoints(Te *testing.T) {
	L := chainLayout(Te, 3)
	L.SetRandomSeed(7)
	require.NoError(Te, L.SetFixedPoint(0, []float64{0, 0, 0}))
	require.NoError(Te, L.SetFixedPoint(1, []float64{1.5, 0, 0}))
	coords, err := L.Generate(5)
	require.NoError(Te, err)
	assert.Equal(Te, []float64{0, 0, 0}, mat.Row(nil, 0, coords))
	assert.Equal(Te, []float64{1.5, 0, 0}, mat.Row(nil, 1, coords))
	assert.InDelta(Te, 1.5, rowDistance(coords, 2, 3), 1e-2)
	L.ClearFixedPoints()
	require.NoError(Te, L.SetFixedPoint(9, []float64{0, 0, 0}))
	_, err = L.Generate(5)
	assert.True(Te, errors.Is(err, ErrIndexOutOfRange))
}

func TestNoConstraints(Te *testing.T) {
	L, err := NewLayout(2)
	require.NoError(Te, err)
	L.SetRandomSeed(3)
	coords, err := L.Generate(1)
	require.NoError(Te, err)
	assert.Equal(Te, 0.0, L.DistanceError(coords))
}
