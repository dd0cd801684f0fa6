/*
 * geometric.go, part of goConf.
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
	"fmt"
	"math"

	v3 "github.com/rmera/goconf/v3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

//Angle returns the angle between the vectors v1 and v2, in radians.
func Angle(v1, v2 r3.Vec) float64 {
	n := r3.Norm(v1) * r3.Norm(v2)
	if n == 0 {
		return 0
	}
	cos := r3.Dot(v1, v2) / n
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

//BondAngle returns the angle a-b-c, in radians.
func BondAngle(a, b, c r3.Vec) float64 {
	return Angle(r3.Sub(a, b), r3.Sub(c, b))
}

//Dihedral returns the signed dihedral angle a-b-c-d, in radians, in the range (-pi, pi].
func Dihedral(a, b, c, d r3.Vec) float64 {
	b1 := r3.Sub(b, a)
	b2 := r3.Sub(c, b)
	b3 := r3.Sub(d, c)
	n1 := r3.Cross(b1, b2)
	n2 := r3.Cross(b2, b3)
	y := r3.Norm(b2) * r3.Dot(b1, n2)
	x := r3.Dot(n1, n2)
	return math.Atan2(y, x)
}

//RotateAbout rotates, in place, the atoms of coords with indexes in atoms by angle radians
//around the axis that goes from ax1 to ax2.
func RotateAbout(coords *v3.Matrix, ax1, ax2 r3.Vec, angle float64, atoms []int) {
	axis := r3.Sub(ax2, ax1)
	if r3.Norm(axis) == 0 {
		panic("RotateAbout: zero-length rotation axis")
	}
	rot := r3.NewRotation(angle, axis)
	for _, i := range atoms {
		p := r3.Sub(coords.Vec(i), ax1)
		coords.SetVec(i, r3.Add(rot.Rotate(p), ax1))
	}
}

//RMSD returns the root mean square deviation between test and templa, without superimposing them.
//If indexes is given, only the atoms in indexes[0] are considered.
func RMSD(test, templa *v3.Matrix, indexes ...[]int) (float64, error) {
	if test.NVecs() != templa.NVecs() {
		return 0, CError{fmt.Sprintf("Ill-formed matrices: %d vs %d vectors", test.NVecs(), templa.NVecs()), []string{"RMSD"}}
	}
	var sum float64
	n := 0
	add := func(i int) {
		sum += r3.Norm2(r3.Sub(test.Vec(i), templa.Vec(i)))
		n++
	}
	if len(indexes) > 0 && indexes[0] != nil {
		for _, i := range indexes[0] {
			add(i)
		}
	} else {
		for i := 0; i < test.NVecs(); i++ {
			add(i)
		}
	}
	if n == 0 {
		return 0, CError{"No atoms to compare", []string{"RMSD"}}
	}
	return math.Sqrt(sum / float64(n)), nil
}

//Super determines the best rotation and translations to superimpose the atoms of test
//listed in testlst on the atoms of templa listed in templalst (Kabsch algorithm),
//and returns a copy of the whole test, superimposed. If the lists are nil, all atoms are used.
func Super(test, templa *v3.Matrix, testlst, templalst []int) (*v3.Matrix, error) {
	if testlst == nil {
		testlst = allIndexes(test.NVecs())
	}
	if templalst == nil {
		templalst = allIndexes(templa.NVecs())
	}
	if len(testlst) != len(templalst) || len(testlst) == 0 {
		return nil, CError{fmt.Sprintf("Ill-formed atom lists: %d vs %d", len(testlst), len(templalst)), []string{"Super"}}
	}
	rot, ctest, ctempla, err := kabsch(test, templa, testlst, templalst)
	if err != nil {
		return nil, errDecorate(err, "Super")
	}
	ret := v3.Zeros(test.NVecs())
	for i := 0; i < test.NVecs(); i++ {
		ret.SetVec(i, r3.Add(rot.MulVec(r3.Sub(test.Vec(i), ctest)), ctempla))
	}
	return ret, nil
}

//AlignedRMSD superimposes test on templa using the atoms in indexes (all atoms if nil)
//and returns the RMSD over the same atoms.
func AlignedRMSD(test, templa *v3.Matrix, indexes []int) (float64, error) {
	sup, err := Super(test, templa, indexes, indexes)
	if err != nil {
		return 0, errDecorate(err, "AlignedRMSD")
	}
	return RMSD(sup, templa, indexes)
}

//kabsch returns the rotation that best superimposes the centered test
//points on the centered template points, and both centroids.
func kabsch(test, templa *v3.Matrix, testlst, templalst []int) (*r3.Mat, r3.Vec, r3.Vec, error) {
	sub1 := v3.Zeros(len(testlst))
	sub1.SomeVecs(test, testlst)
	sub2 := v3.Zeros(len(templalst))
	sub2.SomeVecs(templa, templalst)
	c1 := sub1.Centroid()
	c2 := sub2.Centroid()
	sub1.SubVec(sub1, c1)
	sub2.SubVec(sub2, c2)
	H := mat.NewDense(3, 3, nil)
	H.Mul(sub1.Dense.T(), sub2.Dense)
	var svd mat.SVD
	if ok := svd.Factorize(H, mat.SVDFull); !ok {
		return nil, c1, c2, CError{"SVD factorization failed", []string{"kabsch"}}
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	D := mat.NewDense(3, 3, nil)
	D.Mul(&V, U.T())
	d := 1.0
	if mat.Det(D) < 0 {
		d = -1.0
	}
	S := mat.NewDiagDense(3, []float64{1, 1, d})
	R := mat.NewDense(3, 3, nil)
	R.Product(&V, S, U.T())
	rot := r3.NewMat(nil)
	rot.CloneFrom(R)
	return rot, c1, c2, nil
}

func allIndexes(n int) []int {
	ret := make([]int, n)
	for i := range ret {
		ret[i] = i
	}
	return ret
}
