/*
 * doc.go, part of goConf.
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

/*
Package chem is the main package of goConf. It provides the typed molecule
structures (atoms, bonds, topologies and multi-conformer molecules) consumed
by the conformer generator, and some functions for geometric manipulations.

	**goConf Capabilities**

    Distance-geometry layout of points in 2D or 3D from distance bounds (package dg).

    MMFF94-style energies and analytic gradients: bond stretching, angle
    bending, stretch-bend, out-of-plane bending, torsions, buffered 14-7
    van der Waals and buffered Coulomb electrostatics (package mmff).

    L-BFGS refinement of conformers, with fixed atoms kept in place.

    Conformer ensemble generation with ring-fragment libraries, torsion driving,
    energy windows and symmetry-aware RMSD pruning (package confgen).

    Superimposes molecules using any subset of atoms (Kabsch) and calculates RMSDs.

    Rotates a sub-group of atoms in a molecule using any 2 coordinates as
    the rotation axis.

    Reads and writes typed molecules as JSON, and writes ensembles as multi-frame
    XYZ, optionally compressed (package confio). Plots torsion energy profiles
    (package confplot).

goConf uses its own matrix type for coordinates, v3.Matrix, based on gonum's
Dense. Each row of a v3.Matrix represents one point in space.
*/
package chem
