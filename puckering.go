/*
 * puckering.go, part of goConf.
 *
 * Copyright 2012 Raul Mera <rmera{at}usachDOTcl>
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
	"gonum.org/v1/gonum/spatial/r3"
)

//Puckering holds the Cremer-Pople puckering coordinates of a ring.
//Based on Cremer and Pople, J Am Chem Soc, 97, 1354, (1975).
type Puckering struct {
	//Q is the total puckering amplitude, in A.
	Q float64
	//Amplitudes are q_m, for m=2,3... up to (N-1)/2 for odd rings and N/2 for even ones.
	Amplitudes []float64
	//Phases are the phi_m angles, in degrees, for the amplitudes that have one (all but q_N/2).
	Phases []float64
}

//Theta returns the polar puckering angle, in degrees, for 6-membered rings. 0 and 180 are
//chairs, 90 is a boat or twist-boat.
func (P Puckering) Theta() (float64, error) {
	if len(P.Amplitudes) != 2 || len(P.Phases) != 1 {
		return 0, CError{"Theta is only defined for 6-membered rings", []string{"Puckering.Theta"}}
	}
	return Rad2Deg(math.Atan2(P.Amplitudes[0], P.Amplitudes[1])), nil
}

func (P Puckering) String() string {
	return fmt.Sprintf("Q %.4f q %v phi %v", P.Q, P.Amplitudes, P.Phases)
}

//RingPuckering returns the puckering coordinates of the ring formed by the atoms in ring,
//which must be given in bonding order.
func RingPuckering(coords *v3.Matrix, ring []int) (Puckering, error) {
	N := len(ring)
	if N < 4 {
		return Puckering{}, CError{fmt.Sprintf("Puckering needs at least 4 atoms, got %d", N), []string{"RingPuckering"}}
	}
	R := make([]r3.Vec, N)
	var cen r3.Vec
	for j, a := range ring {
		if a < 0 || a >= coords.NVecs() {
			return Puckering{}, CError{fmt.Sprintf("Atom %d out of range", a), []string{"RingPuckering"}}
		}
		R[j] = coords.Vec(a)
		cen = r3.Add(cen, R[j])
	}
	cen = r3.Scale(1/float64(N), cen)
	//The mean plane is defined by the sine and cosine weighted sums of the positions.
	var Rp, Rpp r3.Vec
	for j := range R {
		R[j] = r3.Sub(R[j], cen)
		a := 2 * math.Pi * float64(j) / float64(N)
		Rp = r3.Add(Rp, r3.Scale(math.Sin(a), R[j]))
		Rpp = r3.Add(Rpp, r3.Scale(math.Cos(a), R[j]))
	}
	normal := r3.Cross(Rp, Rpp)
	if r3.Norm(normal) < appzero {
		return Puckering{}, CError{"Degenerate ring geometry", []string{"RingPuckering"}}
	}
	normal = r3.Unit(normal)
	z := make([]float64, N)
	var ret Puckering
	for j := range R {
		z[j] = r3.Dot(R[j], normal)
		ret.Q += z[j] * z[j]
	}
	ret.Q = math.Sqrt(ret.Q)
	norm := math.Sqrt(2 / float64(N))
	for m := 2; m <= (N-1)/2; m++ {
		var qc, qs float64
		for j, zj := range z {
			a := 2 * math.Pi * float64(m*j) / float64(N)
			qc += zj * math.Cos(a)
			qs -= zj * math.Sin(a)
		}
		qc *= norm
		qs *= norm
		ret.Amplitudes = append(ret.Amplitudes, math.Hypot(qc, qs))
		ret.Phases = append(ret.Phases, Rad2Deg(math.Atan2(qs, qc)))
	}
	if N%2 == 0 {
		var q float64
		for j, zj := range z {
			if j%2 == 0 {
				q += zj
			} else {
				q -= zj
			}
		}
		ret.Amplitudes = append(ret.Amplitudes, q/math.Sqrt(float64(N)))
	}
	return ret, nil
}
