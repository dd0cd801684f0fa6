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

/*
Package mmff implements the MMFF94 force field terms, with analytic gradients,
the parameter tables they use, the assembly of a force field for a typed
molecule and an L-BFGS minimizer that can keep some atoms fixed.

Energies are in kcal/mol, distances in A. The term functions take and return
gonum r3.Vec values. Atoms must carry their MMFF94 numeric type (and, for
electrostatics, partial charges) before Setup is called; the package does not
perceive types.
*/
package mmff
