/*
 * setup.go, part of goConf.
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
	"fmt"
	"math"

	chem "github.com/rmera/goconf"
	"github.com/rmera/goconf/chemgraph"
)

const (
	elec14Scale = 0.75
	vdwPowB     = 0.2
	vdwBeta     = 12.0
	daRadScale  = 0.8
	daEpsScale  = 0.5
)

//Options controls how a force field is set up.
type Options struct {
	//Strict turns missing bond, angle and torsion parameters into errors instead of
	//using the empirical rules.
	Strict bool
	//Dielectric is the dielectric constant for electrostatics.
	Dielectric float64
	//DistanceExponent is 1 for a constant dielectric, 2 for a distance-dependent one.
	DistanceExponent float64
	//Parallel evaluates the term families concurrently.
	Parallel bool
}

//DefaultOptions returns the MMFF94 defaults: constant dielectric of 1, no strict mode.
func DefaultOptions() Options {
	return Options{Dielectric: 1, DistanceExponent: 1}
}

type bondTerm struct {
	i, j   int
	kb, r0 float64
}

type angleTerm struct {
	i, j, k    int
	ka, theta0 float64
	linear     bool
}

type stbnTerm struct {
	i, j, k                        int
	kijk, kkji, r0ij, r0kj, theta0 float64
}

type oopTerm struct {
	i, j, k, l int
	koop       float64
}

type torsionTerm struct {
	i, j, k, l int
	v1, v2, v3 float64
}

type vdwTerm struct {
	i, j                int
	eps, rstar, rstar7 float64
}

type elecTerm struct {
	i, j      int
	qq, scale float64
}

//ForceField holds the interactions of one molecule, parameterized and ready to
//evaluate. It is safe for concurrent use.
type ForceField struct {
	n        int
	opts     Options
	bonds    []bondTerm
	angles   []angleTerm
	stbn     []stbnTerm
	oop      []oopTerm
	torsions []torsionTerm
	vdw      []vdwTerm
	elec     []elecTerm
	r0       map[[2]int]float64
	theta0   map[[3]int]float64
	//Fallbacks counts the interactions parameterized with empirical rules.
	Fallbacks int
}

//Setup builds the force field for the typed topology top, with the parameters P. If
//P is nil, the default parameter set is used.
//It fails if an atom has no type, if a type has no van der Waals parameters, or, in strict
//mode, if a bond, angle or torsion has no parameters.
//The stretch-bend and torsion lookups use simplified type indexes: stretch-bends use the
//angle type (the sum of the two bond types) and torsions the type of the central bond, while
//MMFF94 has its own index for each, e.g. stretch-bend types depend on which of the two bonds
//has type 1. The reduced default parameter set is written with the simplified indexes, so
//full MMFF94 tables need their STBN and TORS indexes mapped accordingly.
func Setup(top chem.Bonder, P *Parameters, opts Options) (*ForceField, error) {
	if P == nil {
		P = Default()
	}
	if opts.Dielectric <= 0 {
		opts.Dielectric = 1
	}
	if opts.DistanceExponent <= 0 {
		opts.DistanceExponent = 1
	}
	F := &ForceField{
		n:      top.Len(),
		opts:   opts,
		r0:     make(map[[2]int]float64),
		theta0: make(map[[3]int]float64),
	}
	for i := 0; i < top.Len(); i++ {
		at := top.Atom(i)
		if at.MMFFType <= 0 {
			return nil, newError(ErrUntyped, fmt.Sprintf("atom %d (%s)", i, at.Symbol), "Setup")
		}
		if _, ok := P.Vdw(at.MMFFType); !ok {
			return nil, newError(ErrMissingParameter, fmt.Sprintf("no van der Waals parameters for type %d (atom %d)", at.MMFFType, i), "Setup")
		}
	}
	steps := []func(chem.Bonder, *Parameters) error{F.setupBonds, F.setupAngles, F.setupOutOfPlane, F.setupTorsions, F.setupNonBonded}
	for _, s := range steps {
		if err := s(top, P); err != nil {
			return nil, errDecorate(err, "Setup")
		}
	}
	return F, nil
}

//NumAtoms returns the number of atoms the force field was built for.
func (F *ForceField) NumAtoms() int { return F.n }

//Options returns the options the force field was built with.
func (F *ForceField) Options() Options { return F.opts }

//String summarizes the number of interactions of each kind.
func (F *ForceField) String() string {
	return fmt.Sprintf("bonds: %d angles: %d stretch-bend: %d oop: %d torsions: %d vdw: %d elec: %d fallbacks: %d",
		len(F.bonds), len(F.angles), len(F.stbn), len(F.oop), len(F.torsions), len(F.vdw), len(F.elec), F.Fallbacks)
}

//ReferenceBondLength returns the equilibrium length of the bond between atoms i and j.
func (F *ForceField) ReferenceBondLength(i, j int) (float64, bool) {
	if i > j {
		i, j = j, i
	}
	r, ok := F.r0[[2]int{i, j}]
	return r, ok
}

//ReferenceAngle returns the equilibrium i-j-k angle, in degrees.
func (F *ForceField) ReferenceAngle(i, j, k int) (float64, bool) {
	if i > k {
		i, k = k, i
	}
	t, ok := F.theta0[[3]int{i, j, k}]
	return t, ok
}

/***Empirical rules***/

//empiricalBond estimates bond parameters from covalent radii and the bond order.
func empiricalBond(b *chem.Bond) BondParams {
	r1, ok1 := chem.CovalentRadius(b.At1.Symbol)
	r2, ok2 := chem.CovalentRadius(b.At2.Symbol)
	if !ok1 {
		r1 = 0.76
	}
	if !ok2 {
		r2 = 0.76
	}
	r0 := r1 + r2
	kb := 5.0
	switch {
	case b.Order >= 3:
		r0 -= 0.32
		kb = 15.0
	case b.Order >= 2:
		r0 -= 0.18
		kb = 9.0
	case b.Order > 1:
		r0 -= 0.10
		kb = 6.5
	}
	return BondParams{Kb: kb, R0: r0}
}

//empiricalAngle uses the ideal angle for the hybridization of the center.
func empiricalAngle(center *chem.Atom, degree int) (AngleParams, bool) {
	switch {
	case center.Hyb == chem.SP:
		return AngleParams{Ka: 0.4, Theta0: 180}, true
	case center.Hyb == chem.SP2 || center.Aromatic || (center.Hyb == chem.HybUndef && degree == 3 && center.Symbol == "C"):
		return AngleParams{Ka: 0.5, Theta0: 120}, false
	}
	return AngleParams{Ka: 0.5, Theta0: 109.47}, false
}

//empiricalTorsion gives a threefold barrier for single bonds between sp3 centers and a twofold
//one for multiple or conjugated bonds.
func empiricalTorsion(b *chem.Bond) TorsionParams {
	sp2 := func(a *chem.Atom) bool { return a.Hyb == chem.SP2 || a.Aromatic }
	switch {
	case b.Order >= 2:
		return TorsionParams{V2: 12}
	case b.Order > 1:
		return TorsionParams{V2: 7}
	case sp2(b.At1) && sp2(b.At2):
		return TorsionParams{V2: 1.5}
	case sp2(b.At1) || sp2(b.At2):
		return TorsionParams{V3: 0.1}
	}
	return TorsionParams{V3: 0.3}
}

/***Interaction lists***/

func (F *ForceField) setupBonds(top chem.Bonder, P *Parameters) error {
	for n := 0; n < top.NumBonds(); n++ {
		b := top.Bond(n)
		i, j := b.At1.Index, b.At2.Index
		p, ok := P.Bond(b.Type, b.At1.MMFFType, b.At2.MMFFType)
		if !ok {
			if F.opts.Strict {
				return newError(ErrMissingParameter, fmt.Sprintf("bond %d-%d, types %d-%d", i, j, b.At1.MMFFType, b.At2.MMFFType), "setupBonds")
			}
			p = empiricalBond(b)
			F.Fallbacks++
		}
		F.bonds = append(F.bonds, bondTerm{i: i, j: j, kb: p.Kb, r0: p.R0})
		if i > j {
			i, j = j, i
		}
		F.r0[[2]int{i, j}] = p.R0
	}
	return nil
}

func (F *ForceField) setupAngles(top chem.Bonder, P *Parameters) error {
	for j := 0; j < top.Len(); j++ {
		nb := top.Neighbors(j)
		cj := top.Atom(j)
		for a := 0; a < len(nb); a++ {
			for c := a + 1; c < len(nb); c++ {
				i, k := nb[a], nb[c]
				ai, ak := top.Atom(i), top.Atom(k)
				bij, bkj := top.BondBetween(i, j), top.BondBetween(k, j)
				at := bij.Type + bkj.Type
				p, ok := P.Angle(at, ai.MMFFType, cj.MMFFType, ak.MMFFType)
				linear := cj.Hyb == chem.SP
				if !ok {
					if F.opts.Strict {
						return newError(ErrMissingParameter, fmt.Sprintf("angle %d-%d-%d, types %d-%d-%d", i, j, k, ai.MMFFType, cj.MMFFType, ak.MMFFType), "setupAngles")
					}
					p, linear = empiricalAngle(cj, len(nb))
					F.Fallbacks++
				}
				F.angles = append(F.angles, angleTerm{i: i, j: j, k: k, ka: p.Ka, theta0: p.Theta0, linear: linear})
				F.theta0[[3]int{i, j, k}] = p.Theta0
				if linear {
					continue
				}
				s, ok := P.StretchBend(at, ai.MMFFType, cj.MMFFType, ak.MMFFType)
				if !ok {
					//no stretch-bend coupling without parameters.
					continue
				}
				r0ij, _ := F.ReferenceBondLength(i, j)
				r0kj, _ := F.ReferenceBondLength(k, j)
				F.stbn = append(F.stbn, stbnTerm{i: i, j: j, k: k, kijk: s.KIJK, kkji: s.KKJI, r0ij: r0ij, r0kj: r0kj, theta0: p.Theta0})
			}
		}
	}
	return nil
}

//setupOutOfPlane adds one term per neighbor of each trigonal center.
func (F *ForceField) setupOutOfPlane(top chem.Bonder, P *Parameters) error {
	for j := 0; j < top.Len(); j++ {
		nb := top.Neighbors(j)
		cj := top.Atom(j)
		if len(nb) != 3 {
			continue
		}
		t := func(x int) int { return top.Atom(x).MMFFType }
		p, ok := P.OutOfPlane(t(nb[0]), cj.MMFFType, t(nb[1]), t(nb[2]))
		if !ok {
			if cj.Hyb != chem.SP2 && !cj.Aromatic {
				continue
			}
			p = OutOfPlaneParams{Koop: 0.03}
			F.Fallbacks++
		}
		for l := 0; l < 3; l++ {
			i, k := nb[(l+1)%3], nb[(l+2)%3]
			F.oop = append(F.oop, oopTerm{i: i, j: j, k: k, l: nb[l], koop: p.Koop})
		}
	}
	return nil
}

func (F *ForceField) setupTorsions(top chem.Bonder, P *Parameters) error {
	for n := 0; n < top.NumBonds(); n++ {
		b := top.Bond(n)
		j, k := b.At1.Index, b.At2.Index
		if b.At1.Hyb == chem.SP || b.At2.Hyb == chem.SP {
			continue
		}
		for _, i := range top.Neighbors(j) {
			if i == k {
				continue
			}
			for _, l := range top.Neighbors(k) {
				if l == j || l == i {
					continue
				}
				p, ok := P.Torsion(b.Type, top.Atom(i).MMFFType, b.At1.MMFFType, b.At2.MMFFType, top.Atom(l).MMFFType)
				if !ok {
					if F.opts.Strict {
						return newError(ErrMissingParameter, fmt.Sprintf("torsion %d-%d-%d-%d", i, j, k, l), "setupTorsions")
					}
					p = empiricalTorsion(b)
					F.Fallbacks++
				}
				if p.V1 == 0 && p.V2 == 0 && p.V3 == 0 {
					continue
				}
				F.torsions = append(F.torsions, torsionTerm{i: i, j: j, k: k, l: l, v1: p.V1, v2: p.V2, v3: p.V3})
			}
		}
	}
	return nil
}

//VdwPair returns the MMFF94 combined well depth and minimum-energy distance for two atom types.
func VdwPair(a, b VdwParams) (eps, rstar float64) {
	ri := a.A * math.Pow(a.Alpha, 0.25)
	rj := b.A * math.Pow(b.Alpha, 0.25)
	if a.DA == 'D' || b.DA == 'D' {
		rstar = 0.5 * (ri + rj)
	} else {
		g := (ri - rj) / (ri + rj)
		rstar = 0.5 * (ri + rj) * (1 + vdwPowB*(1-math.Exp(-vdwBeta*g*g)))
	}
	r6 := math.Pow(rstar, 6)
	eps = 181.16 * a.G * b.G * a.Alpha * b.Alpha / ((math.Sqrt(a.Alpha/a.N) + math.Sqrt(b.Alpha/b.N)) * r6)
	if (a.DA == 'D' && b.DA == 'A') || (a.DA == 'A' && b.DA == 'D') {
		rstar *= daRadScale
		eps *= daEpsScale
	}
	return eps, rstar
}

//setupNonBonded adds van der Waals and electrostatic terms for the pairs separated by
//3 or more bonds. 1-4 electrostatics are scaled.
func (F *ForceField) setupNonBonded(top chem.Bonder, P *Parameters) error {
	dist := chemgraph.New(top).Distances(3)
	for i := 0; i < top.Len(); i++ {
		ai := top.Atom(i)
		vi, _ := P.Vdw(ai.MMFFType)
		for j := i + 1; j < top.Len(); j++ {
			d := dist[i][j]
			if d >= 0 && d < 3 {
				continue
			}
			aj := top.Atom(j)
			vj, _ := P.Vdw(aj.MMFFType)
			eps, rstar := VdwPair(vi, vj)
			F.vdw = append(F.vdw, vdwTerm{i: i, j: j, eps: eps, rstar: rstar, rstar7: math.Pow(rstar, 7)})
			qq := ai.Charge * aj.Charge
			if qq == 0 {
				continue
			}
			scale := 1.0
			if d == 3 {
				scale = elec14Scale
			}
			F.elec = append(F.elec, elecTerm{i: i, j: j, qq: qq, scale: scale})
		}
	}
	return nil
}
