/*
 * bonds.go, part of goConf.
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

	v3 "github.com/rmera/goconf/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

//constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

//Bond is a covalent bond between two atoms.
type Bond struct {
	Index int
	At1   *Atom
	At2   *Atom
	Order float64 //Order 0 means undetermined. Aromatic bonds have order 1.5
	Type  int     //MMFF bond type index, 1 for single bonds between sp2 centers not in aromatic rings.
}

//Cross returns the atom bonded to origin by the bond B.
func (B *Bond) Cross(origin *Atom) *Atom {
	if origin.Index == B.At1.Index {
		return B.At2
	}
	if origin.Index == B.At2.Index {
		return B.At1
	}
	panic("Trying to cross a bond: The origin atom given is not present in the bond!") //programming error
}

//Contains returns true if the atom with index i is one of the bond's atoms.
func (B *Bond) Contains(i int) bool {
	return B.At1.Index == i || B.At2.Index == i
}

//AssignBonds assigns single bonds to a topology based on a simple distance
//criterion, similar to that described in DOI:10.1186/1758-2946-3-33.
//It is meant for small molecules read without connectivity.
func AssignBonds(coord *v3.Matrix, T *Topology) error {
	if coord.NVecs() != T.Len() {
		return CError{fmt.Sprintf("%d coordinates for %d atoms", coord.NVecs(), T.Len()), []string{"AssignBonds"}}
	}
	for i := 0; i < T.Len(); i++ {
		c1, ok := symbolCovrad[T.Atom(i).Symbol]
		if !ok {
			return CError{"Covalent radius unavailable for " + T.Atom(i).Symbol, []string{"AssignBonds"}}
		}
		for j := i + 1; j < T.Len(); j++ {
			c2, ok := symbolCovrad[T.Atom(j).Symbol]
			if !ok {
				return CError{"Covalent radius unavailable for " + T.Atom(j).Symbol, []string{"AssignBonds"}}
			}
			d := r3.Norm(r3.Sub(coord.Vec(i), coord.Vec(j)))
			if d < tooclose || d > c1+c2+bondtol || T.BondBetween(i, j) != nil {
				continue
			}
			if _, err := T.AddBond(i, j, 1); err != nil {
				return errDecorate(err, "AssignBonds")
			}
		}
	}
	return nil
}
