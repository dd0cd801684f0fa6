/*
 * json.go, part of goConf.
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
	"encoding/json"
	"fmt"
	"io"
	"math"

	chem "github.com/rmera/goconf"
	v3 "github.com/rmera/goconf/v3"
	"go.uber.org/zap"
)

//Atom is the serialized form of a chem.Atom.
type Atom struct {
	Name          string  `json:"name,omitempty"`
	Symbol        string  `json:"symbol"`
	MMFFType      int     `json:"mmff_type"`
	Charge        float64 `json:"charge"`
	FormalCharge  int     `json:"formal_charge,omitempty"`
	Hybridization string  `json:"hybridization,omitempty"`
	Aromatic      bool    `json:"aromatic,omitempty"`
}

//Bond is the serialized form of a chem.Bond. I and J are atom indexes.
type Bond struct {
	I     int     `json:"i"`
	J     int     `json:"j"`
	Order float64 `json:"order"`
	Type  int     `json:"type,omitempty"`
}

//Frame is one set of coordinates, with its energy if known.
type Frame struct {
	Energy *float64     `json:"energy,omitempty"`
	Coords [][3]float64 `json:"coords"`
}

//Molecule is the serialized form of a chem.Molecule: a typed topology and its conformers.
type Molecule struct {
	Charge       int     `json:"charge"`
	Multiplicity int     `json:"multiplicity,omitempty"`
	Atoms        []Atom  `json:"atoms"`
	Bonds        []Bond  `json:"bonds"`
	Frames       []Frame `json:"frames,omitempty"`
}

func hybFromString(s string) (chem.Hybridization, error) {
	switch s {
	case "sp":
		return chem.SP, nil
	case "sp2":
		return chem.SP2, nil
	case "sp3":
		return chem.SP3, nil
	case "", "undefined":
		return chem.HybUndef, nil
	}
	return chem.HybUndef, fmt.Errorf("unknown hybridization %q", s)
}

//Encode returns the serializable form of mol.
func Encode(mol *chem.Molecule) *Molecule {
	M := &Molecule{Charge: mol.Charge(), Multiplicity: mol.Multi()}
	for _, at := range mol.Atoms {
		a := Atom{Name: at.Name, Symbol: at.Symbol, MMFFType: at.MMFFType, Charge: at.Charge, FormalCharge: at.FormalCharge, Aromatic: at.Aromatic}
		if at.Hyb != chem.HybUndef {
			a.Hybridization = at.Hyb.String()
		}
		M.Atoms = append(M.Atoms, a)
	}
	for _, b := range mol.Bonds {
		M.Bonds = append(M.Bonds, Bond{I: b.At1.Index, J: b.At2.Index, Order: b.Order, Type: b.Type})
	}
	for i, c := range mol.Coords {
		f := Frame{Coords: make([][3]float64, c.NVecs())}
		for j := range f.Coords {
			v := c.Vec(j)
			f.Coords[j] = [3]float64{v.X, v.Y, v.Z}
		}
		if i < len(mol.Energies) {
			e := mol.Energies[i]
			f.Energy = &e
		}
		M.Frames = append(M.Frames, f)
	}
	return M
}

//Decode builds a chem.Molecule from its serialized form. Frame energies are kept only if
//every frame has one.
func (M *Molecule) Decode() (*chem.Molecule, error) {
	multi := M.Multiplicity
	if multi == 0 {
		multi = 1
	}
	top := chem.NewTopology(M.Charge, multi)
	for i, a := range M.Atoms {
		if a.Symbol == "" {
			return nil, newError(ErrFormat, fmt.Sprintf("atom %d has no symbol", i), "Molecule.Decode")
		}
		hyb, err := hybFromString(a.Hybridization)
		if err != nil {
			return nil, newError(ErrFormat, fmt.Sprintf("atom %d: %v", i, err), "Molecule.Decode")
		}
		if _, ok := chem.CovalentRadius(a.Symbol); !ok {
			zap.L().Warn("unknown element", zap.Int("atom", i), zap.String("symbol", a.Symbol))
		}
		top.AddAtom(&chem.Atom{Name: a.Name, Symbol: a.Symbol, MMFFType: a.MMFFType, Charge: a.Charge,
			FormalCharge: a.FormalCharge, Hyb: hyb, Aromatic: a.Aromatic})
	}
	for n, b := range M.Bonds {
		nb, err := top.AddBond(b.I, b.J, b.Order)
		if err != nil {
			return nil, newError(ErrFormat, fmt.Sprintf("bond %d: %v", n, err), "Molecule.Decode")
		}
		nb.Type = b.Type
	}
	var frames []*v3.Matrix
	energies := make([]float64, 0, len(M.Frames))
	for n, f := range M.Frames {
		if len(f.Coords) != top.Len() {
			return nil, newError(ErrFormat, fmt.Sprintf("frame %d has %d atoms, expected %d", n, len(f.Coords), top.Len()), "Molecule.Decode")
		}
		c := v3.Zeros(top.Len())
		for i, r := range f.Coords {
			c.Set(i, 0, r[0])
			c.Set(i, 1, r[1])
			c.Set(i, 2, r[2])
		}
		frames = append(frames, c)
		if f.Energy != nil {
			energies = append(energies, *f.Energy)
		}
	}
	mol, err := chem.NewMolecule(top, frames)
	if err != nil {
		return nil, newError(ErrFormat, err.Error(), "Molecule.Decode")
	}
	if len(energies) == len(frames) && len(frames) > 0 {
		mol.Energies = energies
	}
	return mol, nil
}

//ReadJSON reads a molecule in JSON format from r.
func ReadJSON(r io.Reader) (*chem.Molecule, error) {
	M := new(Molecule)
	dec := json.NewDecoder(r)
	if err := dec.Decode(M); err != nil {
		return nil, newError(ErrFormat, err.Error(), "ReadJSON")
	}
	mol, err := M.Decode()
	if err != nil {
		return nil, errDecorate(err, "ReadJSON")
	}
	return mol, nil
}

//WriteJSON writes mol, with all its frames and energies, in JSON format to w.
func WriteJSON(w io.Writer, mol *chem.Molecule) error {
	for _, e := range mol.Energies {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return newError(ErrFormat, "non-finite energy", "WriteJSON")
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	if err := enc.Encode(Encode(mol)); err != nil {
		return newError(ErrIO, err.Error(), "WriteJSON")
	}
	return nil
}
