/*
 * layout.go, part of goConf.
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

package cli

import (
	"fmt"

	chem "github.com/rmera/goconf"
	"github.com/rmera/goconf/confgen"
	"github.com/rmera/goconf/confio"
	v3 "github.com/rmera/goconf/v3"
	"github.com/spf13/cobra"
)

func (a *app) layoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute 2D coordinates for drawing a molecule",
		Long: `Compute flat coordinates (z=0) for the molecule in the input file, with
regular polygons for rings and 120 degree angles where possible, and write
them as the only frame of the output file.`,
		Args: cobra.NoArgs,
		RunE: a.runLayout,
	}
	f := cmd.Flags()
	f.StringP("input", "i", "", "Input molecule (required)")
	f.StringP("output", "o", "", "Output file (required)")
	f.Uint64("seed", 1, "Random seed")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) runLayout(cmd *cobra.Command, args []string) error {
	mol, err := confio.ReadFile(a.v.GetString("input"))
	if err != nil {
		return err
	}
	c, err := confgen.Depict(mol.Topology, a.v.GetUint64("seed"))
	if err != nil {
		return err
	}
	flat, err := chem.NewMolecule(mol.Topology, []*v3.Matrix{c})
	if err != nil {
		return err
	}
	out := a.v.GetString("output")
	if err := confio.WriteFile(out, flat); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "2D layout of %d atoms written to %s\n", mol.Len(), out)
	return nil
}
