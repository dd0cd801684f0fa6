/*
 * doc.go, part of goConf.
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

//Package confgen generates conformer ensembles for typed molecules.
//
//A Generator embeds the molecule several times with distance geometry, using bounds derived
//from the force field reference geometry and from precomputed conformers of its ring systems,
//which are kept in a FragmentLibrary. Each embedding is then varied by rotating its rotatable bonds.
//The candidates are minimized with the force field, and a subset of low-energy, mutually distant
//conformers is kept. A set of atoms can be kept fixed at their input coordinates.
//
//The outcome of a run is reported as a Status, not as an error. Errors are reserved for
//invalid settings and inputs to the helper functions.
package confgen
