/*
 * scan.go, part of goConf.
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
	"fmt"
	"math"

	chem "github.com/rmera/goconf"
	"github.com/rmera/goconf/chemgraph"
	"github.com/rmera/goconf/mmff"
	v3 "github.com/rmera/goconf/v3"
)

//ScanPoint is one point of a torsion scan.
type ScanPoint struct {
	Angle  float64 //degrees, in (-180, 180]
	Energy float64
	Coords *v3.Matrix
}

//ScanTorsion rigidly rotates the dihedral i-j-k-l of coords in steps of step degrees, over a full turn,
//and returns the force field energy at each point. The atoms on the l side of the j-k bond are the
//ones moved. coords is not modified.
func ScanTorsion(ff *mmff.ForceField, top chem.Bonder, coords *v3.Matrix, i, j, k, l int, step float64) ([]ScanPoint, error) {
	n := top.Len()
	for _, a := range []int{i, j, k, l} {
		if a < 0 || a >= n {
			return nil, newError(ErrInvalidInput, fmt.Sprintf("atom %d out of range", a), "ScanTorsion")
		}
	}
	if step <= 0 || step > 180 || math.IsNaN(step) {
		return nil, newError(ErrInvalidInput, fmt.Sprintf("invalid step %g", step), "ScanTorsion")
	}
	if coords.NVecs() != n || ff.NumAtoms() != n {
		return nil, newError(ErrInvalidInput, "coordinates, topology and force field don't match", "ScanTorsion")
	}
	b := top.BondBetween(j, k)
	if b == nil || top.BondBetween(i, j) == nil || top.BondBetween(k, l) == nil {
		return nil, newError(ErrInvalidInput, fmt.Sprintf("%d-%d-%d-%d is not a dihedral", i, j, k, l), "ScanTorsion")
	}
	g := chemgraph.New(top)
	if g.InRing(b.Index) {
		return nil, newError(ErrInvalidInput, fmt.Sprintf("bond %d-%d is in a ring", j, k), "ScanTorsion")
	}
	moving := g.SideOf(b, k)
	npoints := int(math.Round(360 / step))
	inc := chem.Deg2Rad(360 / float64(npoints))
	ret := make([]ScanPoint, 0, npoints)
	for p := 0; p < npoints; p++ {
		c := coords.Clone()
		if p > 0 {
			chem.RotateAbout(c, c.Vec(j), c.Vec(k), float64(p)*inc, moving)
		}
		phi := chem.Rad2Deg(chem.Dihedral(c.Vec(i), c.Vec(j), c.Vec(k), c.Vec(l)))
		if phi <= -180 {
			phi += 360
		}
		ret = append(ret, ScanPoint{Angle: phi, Energy: ff.Energy(c), Coords: c})
	}
	return ret, nil
}
