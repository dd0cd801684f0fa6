/*
 * energy.go, part of goConf.
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

package mmff

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

//MMFF94 unit conversion factors and expansion constants. Energies are in kcal/mol,
//distances in A and angles, in the energy expressions, in degrees.
const (
	mdynA2kcal   = 143.9325
	angleFactor  = 0.043844
	stbnFactor   = 2.51210
	coulombConst = 332.0716
	bondCubic    = -2.0
	bondQuartic  = 7.0 / 12.0
	angleCubic   = -0.006981317
	vdwB         = 0.07
	vdwG         = 0.12
	elecBuffer   = 0.05
	rad2deg      = 180 / math.Pi
	degenerate   = 1e-8
)

var zero r3.Vec

func clamp(c float64) float64 {
	return math.Max(-1, math.Min(1, c))
}

/***Bond stretching***/

func bondEnergy(kb, r0, r float64) float64 {
	dr := r - r0
	return mdynA2kcal * kb / 2 * dr * dr * (1 + bondCubic*dr + bondQuartic*bondCubic*bondCubic*dr*dr)
}

//BondStretchingEnergy returns the MMFF94 quartic bond stretching energy between p1 and p2.
func BondStretchingEnergy(p1, p2 r3.Vec, kb, r0 float64) float64 {
	return bondEnergy(kb, r0, r3.Norm(r3.Sub(p1, p2)))
}

//BondStretchingGradient returns the bond stretching energy and its gradient with respect to p1 and p2.
//The two gradients are opposite. A zero-length bond gets zero gradient.
func BondStretchingGradient(p1, p2 r3.Vec, kb, r0 float64) (float64, r3.Vec, r3.Vec) {
	d := r3.Sub(p1, p2)
	r := r3.Norm(d)
	e := bondEnergy(kb, r0, r)
	if r < degenerate {
		return e, zero, zero
	}
	dr := r - r0
	dEdr := mdynA2kcal * kb * dr * (1 + 1.5*bondCubic*dr + 2*bondQuartic*bondCubic*bondCubic*dr*dr)
	g := r3.Scale(dEdr/r, d)
	return e, g, r3.Scale(-1, g)
}

/***Angle bending***/

//angleGeometry holds the quantities shared by the angle, stretch-bend terms.
type angleGeometry struct {
	uij, ukj r3.Vec //unit vectors from the center
	rij, rkj float64
	cos      float64
	ok       bool
}

func newAngleGeometry(pi, pj, pk r3.Vec, rij, rkj float64) angleGeometry {
	var A angleGeometry
	dij := r3.Sub(pi, pj)
	dkj := r3.Sub(pk, pj)
	if rij <= 0 {
		rij = r3.Norm(dij)
	}
	if rkj <= 0 {
		rkj = r3.Norm(dkj)
	}
	A.rij, A.rkj = rij, rkj
	if rij < degenerate || rkj < degenerate {
		return A
	}
	A.uij = r3.Scale(1/rij, dij)
	A.ukj = r3.Scale(1/rkj, dkj)
	A.cos = clamp(r3.Dot(A.uij, A.ukj))
	A.ok = true
	return A
}

//dcos returns the derivatives of the cosine of the angle with respect to the 3 positions.
func (A angleGeometry) dcos() (r3.Vec, r3.Vec, r3.Vec) {
	di := r3.Scale(1/A.rij, r3.Sub(A.ukj, r3.Scale(A.cos, A.uij)))
	dk := r3.Scale(1/A.rkj, r3.Sub(A.uij, r3.Scale(A.cos, A.ukj)))
	dj := r3.Scale(-1, r3.Add(di, dk))
	return di, dj, dk
}

//dtheta returns the derivatives of the angle, in degrees, with respect to the 3 positions,
//and false if the angle is too close to 0 or 180 for them to be defined.
func (A angleGeometry) dtheta() (r3.Vec, r3.Vec, r3.Vec, bool) {
	sin := math.Sqrt(1 - A.cos*A.cos)
	if sin < degenerate {
		return zero, zero, zero, false
	}
	f := -rad2deg / sin
	di, dj, dk := A.dcos()
	return r3.Scale(f, di), r3.Scale(f, dj), r3.Scale(f, dk), true
}

func angleEnergy(A angleGeometry, ka, theta0 float64, linear bool) float64 {
	if !A.ok {
		return 0
	}
	if linear {
		return mdynA2kcal * ka * (1 + A.cos)
	}
	dt := math.Acos(A.cos)*rad2deg - theta0
	return angleFactor * ka / 2 * dt * dt * (1 + angleCubic*dt)
}

//AngleBendingEnergy returns the MMFF94 angle bending energy for the angle pi-pj-pk,
//where pj is the center. theta0 is in degrees. linear selects the form used for linear centers.
func AngleBendingEnergy(pi, pj, pk r3.Vec, ka, theta0 float64, linear bool) float64 {
	return angleEnergy(newAngleGeometry(pi, pj, pk, 0, 0), ka, theta0, linear)
}

//AngleBendingEnergyLengths is like AngleBendingEnergy, but takes the
//precomputed lengths of the i-j and k-j bonds.
func AngleBendingEnergyLengths(pi, pj, pk r3.Vec, rij, rkj, ka, theta0 float64, linear bool) float64 {
	return angleEnergy(newAngleGeometry(pi, pj, pk, rij, rkj), ka, theta0, linear)
}

//AngleBendingGradient returns the angle bending energy and its gradient with respect to
//pi, pj and pk. Degenerate geometries (zero-length bonds, or 0/180 degree angles for the
//non-linear form) get zero gradient.
func AngleBendingGradient(pi, pj, pk r3.Vec, ka, theta0 float64, linear bool) (float64, [3]r3.Vec) {
	return angleGradient(newAngleGeometry(pi, pj, pk, 0, 0), ka, theta0, linear)
}

//AngleBendingGradientLengths is like AngleBendingGradient, but takes the
//precomputed lengths of the i-j and k-j bonds.
func AngleBendingGradientLengths(pi, pj, pk r3.Vec, rij, rkj, ka, theta0 float64, linear bool) (float64, [3]r3.Vec) {
	return angleGradient(newAngleGeometry(pi, pj, pk, rij, rkj), ka, theta0, linear)
}

func angleGradient(A angleGeometry, ka, theta0 float64, linear bool) (float64, [3]r3.Vec) {
	var g [3]r3.Vec
	e := angleEnergy(A, ka, theta0, linear)
	if !A.ok {
		return e, g
	}
	if linear {
		di, dj, dk := A.dcos()
		f := mdynA2kcal * ka
		g[0], g[1], g[2] = r3.Scale(f, di), r3.Scale(f, dj), r3.Scale(f, dk)
		return e, g
	}
	di, dj, dk, ok := A.dtheta()
	if !ok {
		return e, g
	}
	dt := math.Acos(A.cos)*rad2deg - theta0
	f := angleFactor * ka * dt * (1 + 1.5*angleCubic*dt)
	g[0], g[1], g[2] = r3.Scale(f, di), r3.Scale(f, dj), r3.Scale(f, dk)
	return e, g
}

/***Stretch-bend***/

//StretchBendEnergy returns the MMFF94 stretch-bend coupling energy for the angle pi-pj-pk.
//kijk couples the i-j bond and kkji the k-j bond to the angle deviation.
func StretchBendEnergy(pi, pj, pk r3.Vec, kijk, kkji, r0ij, r0kj, theta0 float64) float64 {
	A := newAngleGeometry(pi, pj, pk, 0, 0)
	if !A.ok {
		return 0
	}
	dt := math.Acos(A.cos)*rad2deg - theta0
	return stbnFactor * (kijk*(A.rij-r0ij) + kkji*(A.rkj-r0kj)) * dt
}

//StretchBendGradient returns the stretch-bend energy and its gradient with respect to pi, pj and pk.
func StretchBendGradient(pi, pj, pk r3.Vec, kijk, kkji, r0ij, r0kj, theta0 float64) (float64, [3]r3.Vec) {
	var g [3]r3.Vec
	A := newAngleGeometry(pi, pj, pk, 0, 0)
	if !A.ok {
		return 0, g
	}
	dt := math.Acos(A.cos)*rad2deg - theta0
	s := kijk*(A.rij-r0ij) + kkji*(A.rkj-r0kj)
	e := stbnFactor * s * dt
	ti, tj, tk, ok := A.dtheta()
	if !ok {
		return e, g
	}
	//derivatives of s
	si := r3.Scale(kijk, A.uij)
	sk := r3.Scale(kkji, A.ukj)
	sj := r3.Scale(-1, r3.Add(si, sk))
	g[0] = r3.Scale(stbnFactor, r3.Add(r3.Scale(dt, si), r3.Scale(s, ti)))
	g[1] = r3.Scale(stbnFactor, r3.Add(r3.Scale(dt, sj), r3.Scale(s, tj)))
	g[2] = r3.Scale(stbnFactor, r3.Add(r3.Scale(dt, sk), r3.Scale(s, tk)))
	return e, g
}

/***Out-of-plane bending***/

//wilson returns the sine of the Wilson angle of the pl atom with respect to the
//plane pi-pj-pk, plus the vectors needed to differentiate it.
func wilson(pi, pj, pk, pl r3.Vec) (s float64, a, b, c, n r3.Vec, nn, nc float64, ok bool) {
	a = r3.Sub(pi, pj)
	b = r3.Sub(pk, pj)
	c = r3.Sub(pl, pj)
	n = r3.Cross(a, b)
	nn = r3.Norm(n)
	nc = r3.Norm(c)
	if nn < degenerate || nc < degenerate {
		return 0, a, b, c, n, nn, nc, false
	}
	s = clamp(r3.Dot(n, c) / (nn * nc))
	return s, a, b, c, n, nn, nc, true
}

//OutOfPlaneBendingEnergy returns the MMFF94 out-of-plane energy of the atom pl bonded to the center
//pj, with respect to the plane of pi, pj and pk.
func OutOfPlaneBendingEnergy(pi, pj, pk, pl r3.Vec, koop float64) float64 {
	s, _, _, _, _, _, _, ok := wilson(pi, pj, pk, pl)
	if !ok {
		return 0
	}
	chi := math.Asin(s) * rad2deg
	return angleFactor * koop / 2 * chi * chi
}

//OutOfPlaneBendingGradient returns the out-of-plane energy and its gradient with respect to
//pi, pj, pk and pl.
func OutOfPlaneBendingGradient(pi, pj, pk, pl r3.Vec, koop float64) (float64, [4]r3.Vec) {
	var g [4]r3.Vec
	s, a, b, c, n, nn, nc, ok := wilson(pi, pj, pk, pl)
	if !ok {
		return 0, g
	}
	chi := math.Asin(s) * rad2deg
	e := angleFactor * koop / 2 * chi * chi
	cos := math.Sqrt(1 - s*s)
	if cos < degenerate {
		return e, g
	}
	dEds := angleFactor * koop * chi * rad2deg / cos
	gn := r3.Sub(r3.Scale(1/(nn*nc), c), r3.Scale(s/(nn*nn), n))
	dc := r3.Sub(r3.Scale(1/(nn*nc), n), r3.Scale(s/(nc*nc), c))
	da := r3.Cross(b, gn)
	db := r3.Cross(gn, a)
	g[0] = r3.Scale(dEds, da)
	g[2] = r3.Scale(dEds, db)
	g[3] = r3.Scale(dEds, dc)
	g[1] = r3.Scale(-1, r3.Add(r3.Add(g[0], g[2]), g[3]))
	return e, g
}

/***Torsion***/

func torsionEnergy(c, v1, v2, v3 float64) float64 {
	return 0.5 * (v1*(1+c) + v2*(2-2*c*c) + v3*(1+4*c*c*c-3*c))
}

//torsionCos returns the cosine of the dihedral angle pi-pj-pk-pl and the vectors
//needed to differentiate it.
func torsionCos(pi, pj, pk, pl r3.Vec) (c float64, b1, b2, b3, m, n r3.Vec, nm, nn float64, ok bool) {
	b1 = r3.Sub(pj, pi)
	b2 = r3.Sub(pk, pj)
	b3 = r3.Sub(pl, pk)
	m = r3.Cross(b1, b2)
	n = r3.Cross(b2, b3)
	nm = r3.Norm(m)
	nn = r3.Norm(n)
	if nm < degenerate || nn < degenerate {
		return 0, b1, b2, b3, m, n, nm, nn, false
	}
	c = clamp(r3.Dot(m, n) / (nm * nn))
	return c, b1, b2, b3, m, n, nm, nn, true
}

//TorsionEnergy returns the MMFF94 torsion energy, a three-term cosine series in the
//dihedral angle pi-pj-pk-pl. Torsions with collinear atoms have zero energy.
func TorsionEnergy(pi, pj, pk, pl r3.Vec, v1, v2, v3 float64) float64 {
	c, _, _, _, _, _, _, _, ok := torsionCos(pi, pj, pk, pl)
	if !ok {
		return 0
	}
	return torsionEnergy(c, v1, v2, v3)
}

//TorsionEnergyAngle returns the torsion energy for the dihedral angle phi, in radians.
func TorsionEnergyAngle(phi, v1, v2, v3 float64) float64 {
	return torsionEnergy(math.Cos(phi), v1, v2, v3)
}

//TorsionGradient returns the torsion energy and its gradient with respect to the four positions.
func TorsionGradient(pi, pj, pk, pl r3.Vec, v1, v2, v3 float64) (float64, [4]r3.Vec) {
	var g [4]r3.Vec
	c, b1, b2, b3, m, n, nm, nn, ok := torsionCos(pi, pj, pk, pl)
	if !ok {
		return 0, g
	}
	e := torsionEnergy(c, v1, v2, v3)
	dEdc := 0.5 * (v1 - 4*v2*c + v3*(12*c*c-3))
	gm := r3.Sub(r3.Scale(1/(nm*nn), n), r3.Scale(c/(nm*nm), m))
	gn := r3.Sub(r3.Scale(1/(nm*nn), m), r3.Scale(c/(nn*nn), n))
	db1 := r3.Cross(b2, gm)
	db2 := r3.Add(r3.Cross(gm, b1), r3.Cross(b3, gn))
	db3 := r3.Cross(gn, b2)
	g[0] = r3.Scale(-dEdc, db1)
	g[1] = r3.Scale(dEdc, r3.Sub(db1, db2))
	g[2] = r3.Scale(dEdc, r3.Sub(db2, db3))
	g[3] = r3.Scale(dEdc, db3)
	return e, g
}

/***Van der Waals***/

func vdwEnergy(r, eps, rstar, rstar7 float64) float64 {
	r7 := math.Pow(r, 7)
	a := 1.07 * rstar / (r + vdwB*rstar)
	a7 := a * a * a * a * a * a * a
	return eps * a7 * (1.12*rstar7/(r7+vdwG*rstar7) - 2)
}

//VanDerWaalsEnergy returns the MMFF94 buffered 14-7 energy between p1 and p2. eps is the well depth,
//rstar the minimum-energy distance and rstar7 its 7th power.
func VanDerWaalsEnergy(p1, p2 r3.Vec, eps, rstar, rstar7 float64) float64 {
	return vdwEnergy(r3.Norm(r3.Sub(p1, p2)), eps, rstar, rstar7)
}

//VanDerWaalsGradient returns the buffered 14-7 energy and its gradient with respect to p1 and p2.
func VanDerWaalsGradient(p1, p2 r3.Vec, eps, rstar, rstar7 float64) (float64, r3.Vec, r3.Vec) {
	d := r3.Sub(p1, p2)
	r := r3.Norm(d)
	e := vdwEnergy(r, eps, rstar, rstar7)
	if r < degenerate {
		return e, zero, zero
	}
	r6 := math.Pow(r, 6)
	r7 := r6 * r
	a := 1.07 * rstar / (r + vdwB*rstar)
	a7 := a * a * a * a * a * a * a
	den := r7 + vdwG*rstar7
	B := 1.12*rstar7/den - 2
	dA := -7 * a7 / (r + vdwB*rstar)
	dB := -1.12 * rstar7 * 7 * r6 / (den * den)
	dEdr := eps * (dA*B + a7*dB)
	g := r3.Scale(dEdr/r, d)
	return e, g, r3.Scale(-1, g)
}

/***Electrostatics***/

//ElectrostaticEnergy returns the buffered Coulomb energy between charges qi and qj at p1 and p2.
//scale multiplies the interaction (0.75 for 1-4 pairs), dielectric is the dielectric constant
//and dexp the exponent of the buffered distance (1 for a constant dielectric, 2 for a distance-dependent one).
func ElectrostaticEnergy(p1, p2 r3.Vec, qi, qj, scale, dielectric, dexp float64) float64 {
	r := r3.Norm(r3.Sub(p1, p2))
	return coulombConst * qi * qj * scale / (dielectric * math.Pow(r+elecBuffer, dexp))
}

//ElectrostaticGradient returns the electrostatic energy and its gradient with respect to p1 and p2.
func ElectrostaticGradient(p1, p2 r3.Vec, qi, qj, scale, dielectric, dexp float64) (float64, r3.Vec, r3.Vec) {
	d := r3.Sub(p1, p2)
	r := r3.Norm(d)
	e := coulombConst * qi * qj * scale / (dielectric * math.Pow(r+elecBuffer, dexp))
	if r < degenerate {
		return e, zero, zero
	}
	dEdr := -dexp * e / (r + elecBuffer)
	g := r3.Scale(dEdr/r, d)
	return e, g, r3.Scale(-1, g)
}
