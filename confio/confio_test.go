/*
 * confio_test.go, part of goConf.
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

package confio

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	chem "github.com/rmera/goconf"
	v3 "github.com/rmera/goconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func water(Te *testing.T, frames int) *chem.Molecule {
	top := chem.NewTopology(0, 1)
	top.AddAtom(&chem.Atom{Name: "O1", Symbol: "O", MMFFType: 6, Charge: -0.86, Hyb: chem.SP3})
	top.AddAtom(&chem.Atom{Name: "H1", Symbol: "H", MMFFType: 31, Charge: 0.43})
	top.AddAtom(&chem.Atom{Name: "H2", Symbol: "H", MMFFType: 31, Charge: 0.43})
	for _, b := range [][2]int{{0, 1}, {0, 2}} {
		_, err := top.AddBond(b[0], b[1], 1)
		require.NoError(Te, err)
	}
	var coords []*v3.Matrix
	var es []float64
	for f := 0; f < frames; f++ {
		c := v3.Zeros(3)
		c.SetVec(1, r3.Vec{X: 0.96 + 0.01*float64(f)})
		c.SetVec(2, r3.Vec{X: -0.24, Y: 0.93})
		coords = append(coords, c)
		es = append(es, -1.5+float64(f))
	}
	mol, err := chem.NewMolecule(top, coords)
	require.NoError(Te, err)
	if frames > 0 {
		require.NoError(Te, mol.SetFrames(coords, es))
	}
	return mol
}

func requireSameMolecule(Te *testing.T, a, b *chem.Molecule) {
	require.Equal(Te, a.Len(), b.Len())
	require.Equal(Te, a.NumBonds(), b.NumBonds())
	for i := 0; i < a.Len(); i++ {
		x, y := a.Atom(i), b.Atom(i)
		assert.Equal(Te, x.Symbol, y.Symbol)
		assert.Equal(Te, x.Name, y.Name)
		assert.Equal(Te, x.MMFFType, y.MMFFType)
		assert.Equal(Te, x.Charge, y.Charge)
		assert.Equal(Te, x.Hyb, y.Hyb)
	}
	for i := 0; i < a.NumBonds(); i++ {
		assert.Equal(Te, a.Bond(i).At1.Index, b.Bond(i).At1.Index)
		assert.Equal(Te, a.Bond(i).At2.Index, b.Bond(i).At2.Index)
		assert.Equal(Te, a.Bond(i).Order, b.Bond(i).Order)
	}
	require.Equal(Te, a.LenFrames(), b.LenFrames())
	for f := 0; f < a.LenFrames(); f++ {
		assert.Equal(Te, a.Coord(f).Vecs(), b.Coord(f).Vecs())
	}
	assert.Equal(Te, a.Energies, b.Energies)
}

func TestJSON(Te *testing.T) {
	mol := water(Te, 2)
	var buf bytes.Buffer
	require.NoError(Te, WriteJSON(&buf, mol))
	assert.Contains(Te, buf.String(), `"mmff_type": 6`)
	assert.Contains(Te, buf.String(), `"hybridization": "sp3"`)
	mol2, err := ReadJSON(&buf)
	require.NoError(Te, err)
	requireSameMolecule(Te, mol, mol2)

	//a topology without coordinates is valid input.
	top, err := ReadJSON(strings.NewReader(`{"charge": 0, "atoms": [{"symbol": "C", "mmff_type": 1}, {"symbol": "C", "mmff_type": 1}], "bonds": [{"i": 0, "j": 1, "order": 1}]}`))
	require.NoError(Te, err)
	assert.Equal(Te, 2, top.Len())
	assert.Equal(Te, 0, top.LenFrames())
	assert.Equal(Te, 1, top.Multi())
}

func TestJSONErrors(Te *testing.T) {
	bad := []string{
		`{"atoms": [{"symbol": ""}]}`,
		`{"atoms": [{"symbol": "C", "hybridization": "sp5"}]}`,
		`{"atoms": [{"symbol": "C"}], "bonds": [{"i": 0, "j": 3, "order": 1}]}`,
		`{"atoms": [{"symbol": "C"}], "frames": [{"coords": [[0,0,0],[1,1,1]]}]}`,
		`{"atoms": [`,
	}
	for i, s := range bad {
		_, err := ReadJSON(strings.NewReader(s))
		assert.ErrorIs(Te, err, ErrFormat, "case %d", i)
	}
}

func TestXYZ(Te *testing.T) {
	mol := water(Te, 2)
	var buf bytes.Buffer
	require.NoError(Te, WriteXYZ(&buf, mol))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(Te, lines, 10)
	assert.Equal(Te, "3", lines[0])
	assert.Equal(Te, "conformer 1 energy -1.500000 kcal/mol", lines[1])
	assert.True(Te, strings.HasPrefix(lines[2], "O "))
	assert.Equal(Te, "conformer 2 energy -0.500000 kcal/mol", lines[6])
	err := WriteXYZFrame(&buf, mol, v3.Zeros(2), "")
	assert.ErrorIs(Te, err, ErrFormat)
}

func TestFormats(Te *testing.T) {
	assert.Equal(Te, Gzip, CompressionFor("a.json.gz"))
	assert.Equal(Te, Zstd, CompressionFor("a.xyz.ZST"))
	assert.Equal(Te, None, CompressionFor("a.xyz"))
	assert.Equal(Te, "json", Format("a.json.gz"))
	assert.Equal(Te, "xyz", Format("dir/a.XYZ"))
}

func TestFiles(Te *testing.T) {
	dir := Te.TempDir()
	mol := water(Te, 3)
	for _, name := range []string{"w.json", "w.json.gz", "w.json.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(Te, WriteFile(path, mol), name)
		mol2, err := ReadFile(path)
		require.NoError(Te, err, name)
		requireSameMolecule(Te, mol, mol2)
	}
	xyz := filepath.Join(dir, "w.xyz.zst")
	require.NoError(Te, WriteFile(xyz, mol))
	r, err := Open(xyz)
	require.NoError(Te, err)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(Te, err)
	require.NoError(Te, r.Close())
	assert.Equal(Te, 15, strings.Count(buf.String(), "\n"))

	_, err = ReadFile(xyz)
	assert.ErrorIs(Te, err, ErrUnsupported)
	assert.ErrorIs(Te, WriteFile(filepath.Join(dir, "w.pdb"), mol), ErrUnsupported)
	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(Te, err, ErrIO)
}
