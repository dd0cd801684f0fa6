/*
 * constraints.go, part of goConf.
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
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//Source tells where a distance constraint comes from.
type Source int

const (
	UserDefined Source = iota
	BondDerived
	AngleDerived
	TorsionDerived
	RingDerived
	ClashAvoidance
	FixedDerived
)

func (S Source) String() string {
	switch S {
	case BondDerived:
		return "bond"
	case AngleDerived:
		return "angle"
	case TorsionDerived:
		return "torsion"
	case RingDerived:
		return "ring"
	case ClashAvoidance:
		return "clash"
	case FixedDerived:
		return "fixed"
	}
	return "user"
}

//DistanceConstraint bounds the distance between two points.
type DistanceConstraint struct {
	Point1, Point2 int
	Lower, Upper   float64
	Source         Source
}

//target returns the bound violated by the distance d, and false if d
//is within bounds.
func (D DistanceConstraint) target(d float64) (float64, bool) {
	if d < D.Lower {
		return D.Lower, true
	}
	if d > D.Upper {
		return D.Upper, true
	}
	return d, false
}

//ConstraintSet is an ordered list of distance constraints. Constraints are
//identified by their position in the list.
type ConstraintSet struct {
	c []DistanceConstraint
}

//NewConstraintSet returns an empty constraint set.
func NewConstraintSet() *ConstraintSet {
	return &ConstraintSet{}
}

//Add adds a constraint between the points pt1 and pt2. The source defaults to UserDefined.
//It fails if an index is negative, if pt1==pt2, if a bound is negative or NaN, or if lower>upper.
//Whether the indexes are below the number of points is only checked at generation time.
func (C *ConstraintSet) Add(pt1, pt2 int, lower, upper float64, source ...Source) error {
	if pt1 < 0 || pt2 < 0 {
		return newError(ErrInvalidArgument, fmt.Sprintf("negative point index %d-%d", pt1, pt2), "ConstraintSet.Add")
	}
	if pt1 == pt2 {
		return newError(ErrInvalidArgument, fmt.Sprintf("constraint between point %d and itself", pt1), "ConstraintSet.Add")
	}
	if math.IsNaN(lower) || math.IsNaN(upper) || lower < 0 || upper < 0 {
		return newError(ErrInvalidArgument, fmt.Sprintf("bounds must be non-negative numbers, got [%g, %g]", lower, upper), "ConstraintSet.Add")
	}
	if lower > upper {
		return newError(ErrInvalidArgument, fmt.Sprintf("lower bound %g larger than upper bound %g", lower, upper), "ConstraintSet.Add")
	}
	src := UserDefined
	if len(source) > 0 {
		src = source[0]
	}
	C.c = append(C.c, DistanceConstraint{Point1: pt1, Point2: pt2, Lower: lower, Upper: upper, Source: src})
	return nil
}

//Remove deletes the constraint with index idx. The following constraints shift down by one.
func (C *ConstraintSet) Remove(idx int) error {
	if idx < 0 || idx >= len(C.c) {
		return newError(ErrIndexOutOfRange, fmt.Sprintf("constraint %d requested, %d available", idx, len(C.c)), "ConstraintSet.Remove")
	}
	C.c = append(C.c[:idx], C.c[idx+1:]...)
	return nil
}

//Clear removes all the constraints.
func (C *ConstraintSet) Clear() {
	C.c = C.c[:0]
}

//Len returns the number of constraints in the set.
func (C *ConstraintSet) Len() int {
	return len(C.c)
}

//At returns the constraint with index idx, and false if there is no such constraint.
func (C *ConstraintSet) At(idx int) (DistanceConstraint, bool) {
	if idx < 0 || idx >= len(C.c) {
		return DistanceConstraint{}, false
	}
	return C.c[idx], true
}

//Copy returns an independent copy of the set.
func (C *ConstraintSet) Copy() *ConstraintSet {
	return &ConstraintSet{c: append([]DistanceConstraint(nil), C.c...)}
}

//Validate checks that all the constraint indexes are smaller than numPoints.
func (C *ConstraintSet) Validate(numPoints int) error {
	for i, c := range C.c {
		if c.Point1 >= numPoints || c.Point2 >= numPoints {
			return newError(ErrIndexOutOfRange, fmt.Sprintf("constraint %d (%d-%d) refers to a point beyond %d", i, c.Point1, c.Point2, numPoints), "ConstraintSet.Validate")
		}
	}
	return nil
}

//Violation returns the sum of the squared excesses of the distances in coords beyond
//their bounds. Each row of coords is a point.
func (C *ConstraintSet) Violation(coords mat.Matrix) float64 {
	var sum float64
	for _, c := range C.c {
		d := rowDistance(coords, c.Point1, c.Point2)
		t, violated := c.target(d)
		if violated {
			sum += (d - t) * (d - t)
		}
	}
	return sum
}

func rowDistance(coords mat.Matrix, i, j int) float64 {
	_, dim := coords.Dims()
	var sum float64
	for k := 0; k < dim; k++ {
		d := coords.At(i, k) - coords.At(j, k)
		sum += d * d
	}
	return math.Sqrt(sum)
}
