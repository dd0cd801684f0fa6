/*
 * mmff_test.go, part of goConf.
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
	"errors"
	"math"
	"strings"
	"testing"

	chem "github.com/rmera/goconf"
	v3 "github.com/rmera/goconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

//numGrad returns the central finite-difference gradient of f at p.
func numGrad(f func([]r3.Vec) float64, p []r3.Vec) []r3.Vec {
	const h = 1e-6
	g := make([]r3.Vec, len(p))
	for i := range p {
		for c := 0; c < 3; c++ {
			q := append([]r3.Vec(nil), p...)
			r := append([]r3.Vec(nil), p...)
			switch c {
			case 0:
				q[i].X += h
				r[i].X -= h
			case 1:
				q[i].Y += h
				r[i].Y -= h
			case 2:
				q[i].Z += h
				r[i].Z -= h
			}
			d := (f(q) - f(r)) / (2 * h)
			switch c {
			case 0:
				g[i].X = d
			case 1:
				g[i].Y = d
			case 2:
				g[i].Z = d
			}
		}
	}
	return g
}

func compareGrad(Te *testing.T, name string, analytic, numeric []r3.Vec) {
	Te.Helper()
	for i := range analytic {
		tol := 1e-4 * math.Max(1, r3.Norm(numeric[i]))
		assert.InDelta(Te, numeric[i].X, analytic[i].X, tol, "%s atom %d x", name, i)
		assert.InDelta(Te, numeric[i].Y, analytic[i].Y, tol, "%s atom %d y", name, i)
		assert.InDelta(Te, numeric[i].Z, analytic[i].Z, tol, "%s atom %d z", name, i)
	}
}

func TestBondStretching(Te *testing.T) {
	p := []r3.Vec{{X: 0.1, Y: 0.2, Z: -0.1}, {X: 1.6, Y: 0.5, Z: 0.3}}
	assert.InDelta(Te, 0, BondStretchingEnergy(r3.Vec{}, r3.Vec{X: 1.508}, 4.258, 1.508), 1e-12)
	e, g1, g2 := BondStretchingGradient(p[0], p[1], 4.258, 1.508)
	assert.InDelta(Te, BondStretchingEnergy(p[0], p[1], 4.258, 1.508), e, 1e-12)
	assert.InDelta(Te, 0, r3.Norm(r3.Add(g1, g2)), 1e-9)
	f := func(x []r3.Vec) float64 { return BondStretchingEnergy(x[0], x[1], 4.258, 1.508) }
	compareGrad(Te, "bond", []r3.Vec{g1, g2}, numGrad(f, p))
	//coincident points
	_, g1, g2 = BondStretchingGradient(p[0], p[0], 4.258, 1.508)
	assert.Equal(Te, r3.Vec{}, g1)
	assert.Equal(Te, r3.Vec{}, g2)
}

func TestAngleBending(Te *testing.T) {
	p := []r3.Vec{{X: 1.4, Y: 0.3, Z: 0.1}, {X: 0, Y: 0, Z: 0}, {X: -0.5, Y: 1.3, Z: -0.2}}
	for _, linear := range []bool{false, true} {
		e, g := AngleBendingGradient(p[0], p[1], p[2], 0.851, 109.608, linear)
		assert.InDelta(Te, AngleBendingEnergy(p[0], p[1], p[2], 0.851, 109.608, linear), e, 1e-12)
		f := func(x []r3.Vec) float64 { return AngleBendingEnergy(x[0], x[1], x[2], 0.851, 109.608, linear) }
		compareGrad(Te, "angle", g[:], numGrad(f, p))
		assert.InDelta(Te, 0, r3.Norm(r3.Add(r3.Add(g[0], g[1]), g[2])), 1e-9)
	}
	//at the reference angle the energy vanishes.
	t := chem.Deg2Rad(109.608)
	q := r3.Vec{X: math.Cos(t), Y: math.Sin(t)}
	assert.InDelta(Te, 0, AngleBendingEnergy(r3.Vec{X: 1.2}, r3.Vec{}, r3.Scale(1.4, q), 0.851, 109.608, false), 1e-9)
	//zero-length arm
	e, g := AngleBendingGradient(p[1], p[1], p[2], 0.851, 109.608, false)
	assert.Equal(Te, 0.0, e)
	assert.Equal(Te, [3]r3.Vec{}, g)
	//precomputed lengths give the same energy
	rij, rkj := r3.Norm(r3.Sub(p[0], p[1])), r3.Norm(r3.Sub(p[2], p[1]))
	assert.InDelta(Te, AngleBendingEnergy(p[0], p[1], p[2], 0.851, 109.608, false),
		AngleBendingEnergyLengths(p[0], p[1], p[2], rij, rkj, 0.851, 109.608, false), 1e-12)
}

func TestStretchBend(Te *testing.T) {
	p := []r3.Vec{{X: 1.6, Y: 0.2, Z: 0.1}, {X: 0, Y: 0, Z: 0}, {X: -0.4, Y: 1.2, Z: 0.3}}
	e, g := StretchBendGradient(p[0], p[1], p[2], 0.227, 0.070, 1.508, 1.093, 110.549)
	assert.InDelta(Te, StretchBendEnergy(p[0], p[1], p[2], 0.227, 0.070, 1.508, 1.093, 110.549), e, 1e-12)
	f := func(x []r3.Vec) float64 { return StretchBendEnergy(x[0], x[1], x[2], 0.227, 0.070, 1.508, 1.093, 110.549) }
	compareGrad(Te, "stbn", g[:], numGrad(f, p))
}

func TestOutOfPlane(Te *testing.T) {
	p := []r3.Vec{{X: 1.3, Y: 0.1, Z: 0}, {X: 0, Y: 0, Z: 0}, {X: -0.6, Y: 1.1, Z: 0.1}, {X: -0.5, Y: -1.0, Z: 0.4}}
	e, g := OutOfPlaneBendingGradient(p[0], p[1], p[2], p[3], 0.03)
	assert.InDelta(Te, OutOfPlaneBendingEnergy(p[0], p[1], p[2], p[3], 0.03), e, 1e-12)
	f := func(x []r3.Vec) float64 { return OutOfPlaneBendingEnergy(x[0], x[1], x[2], x[3], 0.03) }
	compareGrad(Te, "oop", g[:], numGrad(f, p))
	//planar center
	planar := OutOfPlaneBendingEnergy(p[0], p[1], r3.Vec{X: -0.6, Y: 1.1}, r3.Vec{X: -0.5, Y: -1.0}, 0.03)
	assert.InDelta(Te, 0, planar, 1e-12)
}

func TestTorsion(Te *testing.T) {
	p := []r3.Vec{{X: 1.2, Y: 0.9, Z: 0.3}, {X: 0, Y: 0.4, Z: 0}, {X: 0, Y: -1.1, Z: 0.1}, {X: -1.3, Y: -1.5, Z: 0.8}}
	e, g := TorsionGradient(p[0], p[1], p[2], p[3], 0.103, 0.681, 0.332)
	assert.InDelta(Te, TorsionEnergy(p[0], p[1], p[2], p[3], 0.103, 0.681, 0.332), e, 1e-12)
	f := func(x []r3.Vec) float64 { return TorsionEnergy(x[0], x[1], x[2], x[3], 0.103, 0.681, 0.332) }
	compareGrad(Te, "torsion", g[:], numGrad(f, p))
	phi := chem.Dihedral(p[0], p[1], p[2], p[3])
	assert.InDelta(Te, e, TorsionEnergyAngle(phi, 0.103, 0.681, 0.332), 1e-9)
	for _, a := range []float64{0, 0.4, 1.9, -2.5} {
		assert.InDelta(Te, TorsionEnergyAngle(a, 0.1, 0.7, 0.3), TorsionEnergyAngle(a+2*math.Pi, 0.1, 0.7, 0.3), 1e-12)
		assert.InDelta(Te, TorsionEnergyAngle(a, 0, 0, 0.3), TorsionEnergyAngle(a+2*math.Pi/3, 0, 0, 0.3), 1e-12)
		assert.InDelta(Te, TorsionEnergyAngle(a, 0, 1.2, 0), TorsionEnergyAngle(a+math.Pi, 0, 1.2, 0), 1e-12)
	}
	//threefold barrier: maximum when eclipsed, zero when staggered.
	assert.InDelta(Te, 0.3, TorsionEnergyAngle(0, 0, 0, 0.3), 1e-12)
	assert.InDelta(Te, 0, TorsionEnergyAngle(math.Pi, 0, 0, 0.3), 1e-12)
	//collinear
	e, g = TorsionGradient(r3.Vec{X: -1}, r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 2, Y: 1}, 0.1, 0.7, 0.3)
	assert.Equal(Te, 0.0, e)
	assert.Equal(Te, [4]r3.Vec{}, g)
}

func TestNonBonded(Te *testing.T) {
	p := []r3.Vec{{X: 0.3, Y: -0.2, Z: 0.1}, {X: 3.1, Y: 1.0, Z: -0.6}}
	eps, rstar := VdwPair(VdwParams{Alpha: 1.05, N: 2.49, A: 3.89, G: 1.282, DA: '-'}, VdwParams{Alpha: 0.25, N: 0.8, A: 4.2, G: 1.209, DA: '-'})
	assert.Greater(Te, eps, 0.0)
	assert.Greater(Te, rstar, 2.0)
	rs7 := math.Pow(rstar, 7)
	e, g1, g2 := VanDerWaalsGradient(p[0], p[1], eps, rstar, rs7)
	assert.InDelta(Te, VanDerWaalsEnergy(p[0], p[1], eps, rstar, rs7), e, 1e-12)
	assert.InDelta(Te, 0, r3.Norm(r3.Add(g1, g2)), 1e-9)
	fv := func(x []r3.Vec) float64 { return VanDerWaalsEnergy(x[0], x[1], eps, rstar, rs7) }
	compareGrad(Te, "vdw", []r3.Vec{g1, g2}, numGrad(fv, p))
	//the well depth is -eps at rstar.
	assert.InDelta(Te, -eps, VanDerWaalsEnergy(r3.Vec{}, r3.Vec{X: rstar}, eps, rstar, rs7), 1e-3*eps)

	for _, n := range []float64{1, 2} {
		e, g1, g2 = ElectrostaticGradient(p[0], p[1], -0.68, 0.4, 0.75, 1, n)
		assert.InDelta(Te, ElectrostaticEnergy(p[0], p[1], -0.68, 0.4, 0.75, 1, n), e, 1e-12)
		assert.Less(Te, e, 0.0)
		assert.InDelta(Te, 0, r3.Norm(r3.Add(g1, g2)), 1e-9)
		fe := func(x []r3.Vec) float64 { return ElectrostaticEnergy(x[0], x[1], -0.68, 0.4, 0.75, 1, n) }
		compareGrad(Te, "elec", []r3.Vec{g1, g2}, numGrad(fe, p))
	}
	//donor-acceptor pairs are closer and shallower.
	don := VdwParams{Alpha: 0.15, N: 0.8, A: 4.2, G: 1.209, DA: 'D'}
	acc := VdwParams{Alpha: 0.7, N: 3.15, A: 3.89, G: 1.282, DA: 'A'}
	neu := VdwParams{Alpha: 0.7, N: 3.15, A: 3.89, G: 1.282, DA: '-'}
	eda, rda := VdwPair(don, acc)
	edn, rdn := VdwPair(don, neu)
	assert.InDelta(Te, 0.8*rdn, rda, 1e-12)
	assert.InDelta(Te, 0.5*edn, eda, 1e-12)
}

func TestParameters(Te *testing.T) {
	P := Default()
	assert.Equal(Te, DefaultParameterSet, P.ID)
	assert.Greater(Te, P.Len(), 50)
	b1, ok := P.Bond(0, 1, 5)
	require.True(Te, ok)
	b2, _ := P.Bond(0, 5, 1)
	assert.Equal(Te, b1, b2)
	//bond type 1 falls back to 0
	b3, ok := P.Bond(1, 1, 5)
	assert.True(Te, ok)
	assert.Equal(Te, b1, b3)
	a1, ok := P.Angle(0, 5, 1, 6)
	require.True(Te, ok)
	a2, _ := P.Angle(0, 6, 1, 5)
	assert.Equal(Te, a1, a2)
	//wildcard angle on an sp2 carbon
	aw, ok := P.Angle(0, 7, 2, 8)
	assert.True(Te, ok)
	assert.InDelta(Te, 120.0, aw.Theta0, 1e-9)
	s1, ok := P.StretchBend(0, 1, 1, 5)
	require.True(Te, ok)
	s2, _ := P.StretchBend(0, 5, 1, 1)
	assert.Equal(Te, s1.KIJK, s2.KKJI)
	assert.Equal(Te, s1.KKJI, s2.KIJK)
	t1, ok := P.Torsion(0, 5, 1, 1, 6)
	require.True(Te, ok)
	t2, _ := P.Torsion(0, 6, 1, 1, 5)
	assert.Equal(Te, t1, t2)
	o1, ok := P.OutOfPlane(5, 37, 37, 37)
	assert.True(Te, ok)
	o2, _ := P.OutOfPlane(37, 37, 5, 37)
	assert.Equal(Te, o1, o2)
	_, ok = P.Vdw(99)
	assert.False(Te, ok)

	_, err := LoadDefaults("uff")
	assert.True(Te, errors.Is(err, ErrUnknownParameterSet))
}

func TestLoad(Te *testing.T) {
	good := `# test
BOND 0 1 5 4.766 1.093 # trailing comment
STBN 0 5 1 1 0.070 0.227
VDW 1 1.050 2.490 3.890 1.282 -
`
	P, err := Load(strings.NewReader(good), "test")
	require.NoError(Te, err)
	assert.Equal(Te, 3, P.Len())
	s, ok := P.StretchBend(0, 1, 1, 5)
	require.True(Te, ok)
	assert.Equal(Te, 0.227, s.KIJK)
	assert.Equal(Te, 0.070, s.KKJI)
	bad := []string{
		"BOND 0 1 5 4.766\n",
		"BOND 0 1 5 4.766 1.093\nBOND 0 5 1 4.0 1.1\n",
		"ANGLE 0 1 x 1 0.8 109\n",
		"FOO 1 2 3\n",
		"VDW 1 1.05 2.49 3.89 1.282 Q\n",
		"TORS 0 1 1 1 1 0.1 0.2 abc\n",
	}
	for _, b := range bad {
		_, err := Load(strings.NewReader(b), "bad")
		assert.True(Te, errors.Is(err, ErrParse), b)
	}
}

/***Force field assembly***/

//ethanol returns a typed ethanol molecule and a reasonable geometry.
func ethanol(Te *testing.T) (*chem.Topology, *v3.Matrix) {
	top := chem.NewTopology(0, 1)
	atoms := []struct {
		sym    string
		t      int
		charge float64
	}{
		{"C", 1, 0}, {"C", 1, 0.28}, {"O", 6, -0.68},
		{"H", 5, 0.06}, {"H", 5, 0}, {"H", 5, 0}, {"H", 5, 0}, {"H", 5, 0},
		{"H", 21, 0.4},
	}
	for _, a := range atoms {
		top.AddAtom(&chem.Atom{Symbol: a.sym, Name: a.sym, MMFFType: a.t, Charge: a.charge, Hyb: chem.SP3})
	}
	top.Atom(8).Hyb = chem.HybUndef
	for _, b := range [][2]int{{0, 1}, {1, 2}, {0, 3}, {0, 4}, {0, 5}, {1, 6}, {1, 7}, {2, 8}} {
		_, err := top.AddBond(b[0], b[1], 1)
		require.NoError(Te, err)
	}
	coords, err := v3.NewMatrix([]float64{
		0, 0, 0,
		1.52, 0, 0,
		2.0, 1.35, 0,
		-0.36, 1.03, 0,
		-0.36, -0.51, 0.89,
		-0.36, -0.51, -0.89,
		1.88, -0.51, 0.89,
		1.88, -0.51, -0.89,
		2.95, 1.3, 0,
	})
	require.NoError(Te, err)
	return top, coords
}

func TestSetup(Te *testing.T) {
	top, coords := ethanol(Te)
	F, err := Setup(top, nil, DefaultOptions())
	require.NoError(Te, err)
	assert.Equal(Te, 9, F.NumAtoms())
	assert.Len(Te, F.bonds, 8)
	assert.Len(Te, F.angles, 13)
	assert.Len(Te, F.torsions, 12)
	assert.Empty(Te, F.oop)
	assert.Equal(Te, 0, F.Fallbacks)
	for _, t := range F.vdw {
		assert.False(Te, top.BondBetween(t.i, t.j) != nil, "bonded pair %d-%d in vdw list", t.i, t.j)
	}
	//H3-O2 is a 1-4 pair, H3-H8 a 1-5 one. C1-H8 is 1-3 and excluded.
	scales := map[[2]int]float64{}
	for _, t := range F.elec {
		scales[[2]int{t.i, t.j}] = t.scale
	}
	assert.Len(Te, scales, 2)
	assert.Equal(Te, 0.75, scales[[2]int{2, 3}])
	assert.Equal(Te, 1.0, scales[[2]int{3, 8}])
	r0, ok := F.ReferenceBondLength(1, 0)
	assert.True(Te, ok)
	assert.InDelta(Te, 1.508, r0, 1e-9)
	th, ok := F.ReferenceAngle(6, 1, 0)
	assert.True(Te, ok)
	assert.InDelta(Te, 110.549, th, 1e-9)
	e := F.Energy(coords)
	assert.False(Te, math.IsNaN(e))
	c := F.Components(coords)
	assert.InDelta(Te, e, c.Total(), 1e-9)
	assert.NotEmpty(Te, F.String())
}

func TestSetupFailures(Te *testing.T) {
	top, _ := ethanol(Te)
	untyped := top.Copy()
	untyped.Atom(3).MMFFType = 0
	_, err := Setup(untyped, nil, DefaultOptions())
	assert.True(Te, errors.Is(err, ErrUntyped))

	novdw := top.Copy()
	novdw.Atom(3).MMFFType = 99
	_, err = Setup(novdw, nil, DefaultOptions())
	assert.True(Te, errors.Is(err, ErrMissingParameter))

	//N-O bonds are not in the parameter set.
	hydroxylamine := top.Copy()
	hydroxylamine.Atom(1).MMFFType = 8
	hydroxylamine.Atom(1).Symbol = "N"
	opts := DefaultOptions()
	opts.Strict = true
	_, err = Setup(hydroxylamine, nil, opts)
	assert.True(Te, errors.Is(err, ErrMissingParameter))
	F, err := Setup(hydroxylamine, nil, DefaultOptions())
	require.NoError(Te, err)
	assert.Greater(Te, F.Fallbacks, 0)
}

func TestForceFieldGradient(Te *testing.T) {
	top, coords := ethanol(Te)
	//displace from the reference geometry so every term contributes.
	coords.SetVec(8, r3.Vec{X: 2.7, Y: 1.6, Z: 0.5})
	coords.SetVec(3, r3.Vec{X: -0.3, Y: 0.9, Z: 0.3})
	for _, parallel := range []bool{false, true} {
		opts := DefaultOptions()
		opts.Parallel = parallel
		F, err := Setup(top, nil, opts)
		require.NoError(Te, err)
		grad := v3.Zeros(F.NumAtoms())
		e := F.EnergyGradient(coords, grad)
		assert.InDelta(Te, F.Energy(coords), e, 1e-9)
		f := func(x []r3.Vec) float64 { return F.Energy(v3.FromVecs(x)) }
		compareGrad(Te, "forcefield", grad.Vecs(), numGrad(f, coords.Vecs()))
	}
}

func TestMinimize(Te *testing.T) {
	top, coords := ethanol(Te)
	coords.SetVec(8, r3.Vec{X: 2.7, Y: 1.9, Z: 0.6})
	coords.SetVec(4, r3.Vec{X: -0.1, Y: -0.3, Z: 1.1})
	F, err := Setup(top, nil, DefaultOptions())
	require.NoError(Te, err)
	start := F.Energy(coords)
	orig := coords.Clone()
	M := NewMinimizer(F, 500, 1e-3)
	res, err := M.Minimize(coords, []int{0, 1})
	require.NoError(Te, err)
	assert.Less(Te, res.Energy, start)
	assert.InDelta(Te, F.Energy(coords), res.Energy, 1e-6)
	assert.Equal(Te, orig.Vec(0), coords.Vec(0))
	assert.Equal(Te, orig.Vec(1), coords.Vec(1))

	_, err = M.Minimize(coords, []int{42})
	assert.True(Te, errors.Is(err, ErrMinimization))
	//all atoms fixed: nothing to do.
	res, err = M.Minimize(coords, []int{0, 1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(Te, err)
	assert.True(Te, res.Converged)
}
