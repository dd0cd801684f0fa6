/*
 * xyz.go, part of goConf.
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
	"bufio"
	"fmt"
	"io"

	chem "github.com/rmera/goconf"
	v3 "github.com/rmera/goconf/v3"
)

//WriteXYZFrame writes one frame in XYZ format. The comment line must not contain newlines.
func WriteXYZFrame(w io.Writer, top chem.Atomer, coords *v3.Matrix, comment string) error {
	if coords.NVecs() != top.Len() {
		return newError(ErrFormat, fmt.Sprintf("%d coordinates for %d atoms", coords.NVecs(), top.Len()), "WriteXYZFrame")
	}
	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "%d\n%s\n", top.Len(), comment)
	for i := 0; i < top.Len(); i++ {
		v := coords.Vec(i)
		fmt.Fprintf(b, "%-2s %14.8f %14.8f %14.8f\n", top.Atom(i).Symbol, v.X, v.Y, v.Z)
	}
	if err := b.Flush(); err != nil {
		return newError(ErrIO, err.Error(), "WriteXYZFrame")
	}
	return nil
}

//WriteXYZ writes every frame of mol, one after the other, in XYZ format. The energy of
//each frame, if known, goes in its comment line.
func WriteXYZ(w io.Writer, mol *chem.Molecule) error {
	for i, c := range mol.Coords {
		comment := fmt.Sprintf("conformer %d", i+1)
		if i < len(mol.Energies) {
			comment = fmt.Sprintf("conformer %d energy %.6f kcal/mol", i+1, mol.Energies[i])
		}
		if err := WriteXYZFrame(w, mol, c, comment); err != nil {
			return errDecorate(err, "WriteXYZ")
		}
	}
	return nil
}
