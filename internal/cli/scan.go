/*
 * scan.go, part of goConf.
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

	"github.com/fatih/color"
	"github.com/rmera/goconf/confgen"
	"github.com/rmera/goconf/confio"
	"github.com/rmera/goconf/confplot"
	"github.com/rmera/goconf/mmff"
	v3 "github.com/rmera/goconf/v3"
	"github.com/spf13/cobra"
)

func (a *app) scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the MMFF94 energy along a dihedral",
		Long: `Rotate the dihedral given by four bonded atoms in steps, rigidly moving
the side of the molecule attached to the third atom, and print the MMFF94
energy of each point.`,
		Args: cobra.NoArgs,
		RunE: a.runScan,
	}
	f := cmd.Flags()
	f.StringP("input", "i", "", "Input molecule (required)")
	f.IntSlice("atoms", nil, "The four atoms (0-based) that define the dihedral (required)")
	f.Float64("step", 10, "Step, in degrees")
	f.Int("frame", 0, "Conformer of the input to scan")
	f.String("plot", "", "Write the energy profile to this file")
	f.StringP("output", "o", "", "Write the scanned structures to this file")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("atoms")
	return cmd
}

func (a *app) runScan(cmd *cobra.Command, args []string) error {
	at, err := cmd.Flags().GetIntSlice("atoms")
	if err != nil {
		return err
	}
	if len(at) != 4 {
		return fmt.Errorf("a dihedral needs 4 atoms, got %d", len(at))
	}
	mol, err := confio.ReadFile(a.v.GetString("input"))
	if err != nil {
		return err
	}
	frame := a.v.GetInt("frame")
	if frame < 0 || frame >= mol.LenFrames() {
		return fmt.Errorf("frame %d requested, the input has %d", frame, mol.LenFrames())
	}
	ff, err := mmff.Setup(mol.Topology, nil, mmff.DefaultOptions())
	if err != nil {
		return err
	}
	points, err := confgen.ScanTorsion(ff, mol.Topology, mol.Coord(frame), at[0], at[1], at[2], at[3], a.v.GetFloat64("step"))
	if err != nil {
		return err
	}
	es := make([]float64, len(points))
	for i, p := range points {
		es[i] = p.Energy
	}
	rel := confgen.RelativeEnergies(es)
	w := cmd.OutOrStdout()
	color.New(color.Bold).Fprintf(w, "%10s %16s %12s\n", "angle", "E (kcal/mol)", "dE")
	for i, p := range points {
		fmt.Fprintf(w, "%10.2f %16.4f %12.4f\n", p.Angle, p.Energy, rel[i])
	}
	if name := a.v.GetString("output"); name != "" {
		frames := make([]*v3.Matrix, len(points))
		for i, p := range points {
			frames[i] = p.Coords
		}
		if err := mol.SetFrames(frames, es); err != nil {
			return err
		}
		if err := confio.WriteFile(name, mol); err != nil {
			return err
		}
	}
	if name := a.v.GetString("plot"); name != "" {
		title := fmt.Sprintf("Dihedral %d-%d-%d-%d", at[0], at[1], at[2], at[3])
		p, err := confplot.TorsionProfile(points, title)
		if err != nil {
			return err
		}
		return confplot.Save(p, name)
	}
	return nil
}
