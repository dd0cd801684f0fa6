/*
 * chem.go, part of goConf.
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
	"sort"

	v3 "github.com/rmera/goconf/v3"
)

/**Note: Many functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is most likely wrong and should
 * crash. Most panics are related to using the function on a nil object or trying to access out-of bounds
 * fields**/

//Hybridization is the hybridization state of an atom, as assigned by the atom typer.
type Hybridization int

const (
	HybUndef Hybridization = iota
	SP
	SP2
	SP3
)

func (H Hybridization) String() string {
	switch H {
	case SP:
		return "sp"
	case SP2:
		return "sp2"
	case SP3:
		return "sp3"
	}
	return "undefined"
}

//Atom contains the per-atom information of a typed molecule, except for the coordinates,
//which are in a v3.Matrix.
type Atom struct {
	Name         string
	Symbol       string
	Index        int //position in the topology
	MMFFType     int
	Charge       float64 //partial charge
	FormalCharge int
	Hyb          Hybridization
	Aromatic     bool
	Bonds        []*Bond
}

//Copy returns a copy of the Atom object, without its bonds.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	N := *A
	N.Bonds = nil
	return &N
}

//Heavy returns true if the atom is not a hydrogen.
func (A *Atom) Heavy() bool {
	return A.Symbol != "H" && A.Symbol != "D"
}

/*****Topology type***/

//Topology contains the information about a molecule which is not expected to change
//between conformers, i.e. everything except for coordinates.
type Topology struct {
	Atoms  []*Atom
	Bonds  []*Bond
	charge int
	multi  int
}

//NewTopology returns an empty topology with the given charge and multiplicity.
func NewTopology(charge, multi int) *Topology {
	return &Topology{charge: charge, multi: multi}
}

//Charge gets the total charge of the topology
func (T *Topology) Charge() int {
	return T.charge
}

//Multi returns the multiplicity of the topology
func (T *Topology) Multi() int {
	return T.multi
}

//SetCharge sets the total charge of the topology to i
func (T *Topology) SetCharge(i int) {
	T.charge = i
}

//SetMulti sets the multiplicity of the topology to i
func (T *Topology) SetMulti(i int) {
	T.multi = i
}

//Atom returns the Atom corresponding to the index i
//of the Atom slice in the Topology. Panics if
//out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() || i < 0 {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

//AddAtom appends an atom at the end of the topology, sets its index
//and returns it.
func (T *Topology) AddAtom(at *Atom) int {
	at.Index = len(T.Atoms)
	at.Bonds = nil
	T.Atoms = append(T.Atoms, at)
	return at.Index
}

//AddBond bonds the atoms i and j with the given order.
func (T *Topology) AddBond(i, j int, order float64) (*Bond, error) {
	if i < 0 || j < 0 || i >= T.Len() || j >= T.Len() {
		return nil, CError{fmt.Sprintf("Bond %d-%d out of range for %d atoms", i, j, T.Len()), []string{"AddBond"}}
	}
	if i == j {
		return nil, CError{fmt.Sprintf("Can't bond atom %d to itself", i), []string{"AddBond"}}
	}
	if T.BondBetween(i, j) != nil {
		return nil, CError{fmt.Sprintf("Atoms %d and %d are already bonded", i, j), []string{"AddBond"}}
	}
	b := &Bond{Index: len(T.Bonds), At1: T.Atoms[i], At2: T.Atoms[j], Order: order}
	T.Bonds = append(T.Bonds, b)
	b.At1.Bonds = append(b.At1.Bonds, b)
	b.At2.Bonds = append(b.At2.Bonds, b)
	return b, nil
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//Bond returns the ith bond in the topology.
func (T *Topology) Bond(i int) *Bond {
	return T.Bonds[i]
}

//NumBonds returns the number of bonds in the topology.
func (T *Topology) NumBonds() int {
	return len(T.Bonds)
}

//BondBetween returns the bond between atoms i and j, or nil
//if they are not bonded.
func (T *Topology) BondBetween(i, j int) *Bond {
	for _, b := range T.Atom(i).Bonds {
		if b.Cross(T.Atoms[i]).Index == j {
			return b
		}
	}
	return nil
}

//Neighbors returns the sorted indexes of the atoms bonded to atom i.
func (T *Topology) Neighbors(i int) []int {
	at := T.Atom(i)
	ret := make([]int, 0, len(at.Bonds))
	for _, b := range at.Bonds {
		ret = append(ret, b.Cross(at).Index)
	}
	sort.Ints(ret)
	return ret
}

//HeavyAtoms returns the indexes of all non-hydrogen atoms.
func (T *Topology) HeavyAtoms() []int {
	ret := make([]int, 0, T.Len())
	for i, at := range T.Atoms {
		if at.Heavy() {
			ret = append(ret, i)
		}
	}
	return ret
}

//Copy returns a deep copy of the topology, including bonds.
func (T *Topology) Copy() *Topology {
	N := NewTopology(T.charge, T.multi)
	for _, at := range T.Atoms {
		N.AddAtom(at.Copy())
	}
	for _, b := range T.Bonds {
		nb, _ := N.AddBond(b.At1.Index, b.At2.Index, b.Order)
		nb.Type = b.Type
	}
	return N
}

//SubTopology returns a new topology with copies of the atoms in atoms, in that order,
//and the bonds among them. Atom i of the new topology corresponds to atoms[i].
func (T *Topology) SubTopology(atoms []int) *Topology {
	N := NewTopology(0, 1)
	pos := make(map[int]int, len(atoms))
	for _, i := range atoms {
		pos[i] = N.AddAtom(T.Atom(i).Copy())
	}
	for _, b := range T.Bonds {
		i, ok1 := pos[b.At1.Index]
		j, ok2 := pos[b.At2.Index]
		if !ok1 || !ok2 {
			continue
		}
		nb, _ := N.AddBond(i, j, b.Order)
		nb.Type = b.Type
	}
	return N
}

/**Type Molecule**/

//Molecule contains a topology and a set of conformers for it. Energies, when
//set, has one element per conformer.
type Molecule struct {
	*Topology
	Coords   []*v3.Matrix
	Energies []float64
}

//NewMolecule makes a molecule with the topology top and the conformers coords.
//It returns an error if any set of coordinates does not have one vector per atom.
func NewMolecule(top *Topology, coords []*v3.Matrix) (*Molecule, error) {
	if top == nil {
		return nil, CError{"Supplied a nil Topology", []string{"NewMolecule"}}
	}
	mol := &Molecule{Topology: top, Coords: coords}
	if err := mol.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	return mol, nil
}

//LenFrames returns the number of conformers in the molecule.
func (M *Molecule) LenFrames() int {
	return len(M.Coords)
}

//Coord returns the coordinates of the given conformer.
func (M *Molecule) Coord(frame int) *v3.Matrix {
	return M.Coords[frame]
}

//AddFrame appends a conformer to the molecule.
func (M *Molecule) AddFrame(newframe *v3.Matrix) {
	if newframe.NVecs() != M.Len() {
		panic(v3.ErrShape)
	}
	M.Coords = append(M.Coords, newframe)
}

//SetFrames replaces all the conformers of the molecule and their energies.
//energies can be nil.
func (M *Molecule) SetFrames(frames []*v3.Matrix, energies []float64) error {
	if energies != nil && len(energies) != len(frames) {
		return CError{fmt.Sprintf("%d frames but %d energies", len(frames), len(energies)), []string{"SetFrames"}}
	}
	for i, f := range frames {
		if f.NVecs() != M.Len() {
			return CError{fmt.Sprintf("Frame %d has %d atoms, topology has %d", i, f.NVecs(), M.Len()), []string{"SetFrames"}}
		}
	}
	M.Coords = frames
	M.Energies = energies
	return nil
}

//Corrupted checks whether the molecule is corrupted, i.e. the
//coordinates don't match the number of atoms.
func (M *Molecule) Corrupted() error {
	lastbad := -1
	for i := range M.Coords {
		if M.Coords[i].NVecs() != M.Len() {
			lastbad = i
		}
	}
	if lastbad >= 0 {
		return CError{fmt.Sprintf("Inconsistent coordinates/atoms in frame %d: Atoms %d, coords %d", lastbad, M.Len(), M.Coords[lastbad].NVecs()), []string{"Corrupted"}}
	}
	return nil
}
