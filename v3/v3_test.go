/*
 * v3_test.go, part of goConf.
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

package v3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewMatrix(Te *testing.T) {
	_, err := NewMatrix([]float64{1, 2, 3, 4})
	require.Error(Te, err)
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(Te, err)
	assert.Equal(Te, 3, A.NVecs())
	View := A.VecView(1)
	View.Set(0, 0, 100)
	assert.Equal(Te, 100.0, A.At(1, 0))
	assert.Equal(Te, r3.Vec{X: 100, Y: 5, Z: 6}, A.Vec(1))
}

func TestSomeVecs(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	A, err := NewMatrix(a)
	require.NoError(Te, err)
	B := Zeros(3)
	cind := []int{1, 3, 5}
	require.NoError(Te, B.SomeVecsSafe(A, cind))
	assert.Equal(Te, r3.Vec{X: 10, Y: 11, Z: 12}, B.Vec(1))
	B.Set(1, 1, 55)
	A.SetVecs(B, cind)
	assert.Equal(Te, 55.0, A.At(3, 1))
	assert.Error(Te, B.SomeVecsSafe(A, []int{1, 2, 9}))
}

func TestVecOps(Te *testing.T) {
	A := FromVecs([]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}, {}})
	c := A.Centroid()
	assert.InDelta(Te, 0.25, c.X, 1e-12)
	B := Zeros(4)
	B.SubVec(A, c)
	assert.InDelta(Te, 0, B.Centroid().Y, 1e-12)
	B.SwapVecs(0, 3)
	assert.Equal(Te, A.Vec(0), r3.Add(B.Vec(3), c))
	C := A.Clone()
	C.Set(0, 0, 7)
	assert.Equal(Te, 1.0, A.At(0, 0))
	flat := A.Flat()
	assert.Len(Te, flat, 12)
	C.SetFlat(flat)
	assert.Equal(Te, A.Vec(0), C.Vec(0))
	assert.Contains(Te, A.String(), "1.00")
}
