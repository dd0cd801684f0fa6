/*
 * rings.go, part of goConf.
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
	"strings"

	"github.com/fatih/color"
	chem "github.com/rmera/goconf"
	"github.com/rmera/goconf/chemgraph"
	"github.com/rmera/goconf/confio"
	"github.com/spf13/cobra"
)

func (a *app) ringsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rings",
		Short: "Print the ring puckering of each conformer",
		Long: `Print the Cremer-Pople puckering coordinates of every ring with 4 or more
atoms, for each conformer in the input file. For 6-membered rings the polar
angle theta is also printed (near 0 or 180 for chairs, near 90 for boats).`,
		Args: cobra.NoArgs,
		RunE: a.runRings,
	}
	cmd.Flags().StringP("input", "i", "", "Input molecule or ensemble (required)")
	cmd.Flags().Bool("guess-bonds", false, "Assign single bonds from the first conformer if the input has none")
	cmd.MarkFlagRequired("input")
	return cmd
}

func (a *app) runRings(cmd *cobra.Command, args []string) error {
	mol, err := confio.ReadFile(a.v.GetString("input"))
	if err != nil {
		return err
	}
	guess, _ := cmd.Flags().GetBool("guess-bonds")
	if guess && mol.NumBonds() == 0 && mol.LenFrames() > 0 {
		if err := chem.AssignBonds(mol.Coord(0), mol.Topology); err != nil {
			return err
		}
	}
	w := cmd.OutOrStdout()
	rings := chemgraph.New(mol.Topology).Rings()
	if len(rings) == 0 {
		fmt.Fprintln(w, "No rings")
		return nil
	}
	cyan := color.New(color.FgCyan)
	for _, ring := range rings {
		if len(ring) < 4 {
			continue
		}
		cyan.Fprintf(w, "ring %s\n", ringString(ring))
		for f, c := range mol.Coords {
			p, err := chem.RingPuckering(c, ring)
			if err != nil {
				return fmt.Errorf("conformer %d: %w", f, err)
			}
			fmt.Fprintf(w, "%4d %s", f, p)
			if theta, err := p.Theta(); err == nil {
				fmt.Fprintf(w, " theta %.2f", theta)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

func ringString(ring []int) string {
	s := make([]string, len(ring))
	for i, v := range ring {
		s[i] = fmt.Sprint(v)
	}
	return strings.Join(s, "-")
}
