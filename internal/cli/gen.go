/*
 * gen.go, part of goConf.
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
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rmera/goconf/confgen"
	"github.com/rmera/goconf/confio"
	"github.com/rmera/goconf/confplot"
	"github.com/rmera/goconf/fragdb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) genCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a conformer ensemble",
		Long: `Generate a conformer ensemble for the molecule in the input file, which must
be in goconf JSON format, and write it, lowest energy first, to the output file.
The output format is taken from the extension (.json or .xyz, optionally
followed by .gz or .zst).

Settings are read from the file given with --config, and the flags below
override them.`,
		Args: cobra.NoArgs,
		RunE: a.runGen,
	}
	f := cmd.Flags()
	f.StringP("input", "i", "", "Input molecule (required)")
	f.StringP("output", "o", "", "Output ensemble (required)")
	f.Int64("seed", -1, "Random seed, negative for a clock-derived one")
	f.Int("max-confs", 0, "Maximum number of output conformers")
	f.Float64("min-rmsd", 0, "Minimum heavy-atom RMSD between output conformers (A)")
	f.Float64("window", 0, "Energy window above the minimum (kcal/mol)")
	f.Int64("timeout", 0, "Time limit in milliseconds, 0 for none")
	f.IntSlice("fixed", nil, "Atoms (0-based) that keep their input coordinates")
	f.String("fragdb", "", "SQLite database of ring conformers, read before and updated after the run")
	f.String("plot", "", "Write a histogram of the conformer energies to this file")
	f.Float64("temperature", 298.15, "Temperature for the Boltzmann populations (K)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	return cmd
}

//settings returns the generation settings: the defaults, or those in the --config file,
//with the values of the flags (or the environment) that were set.
func (a *app) settings() (confgen.Settings, error) {
	v := a.v
	S := confgen.DefaultSettings()
	if name := v.GetString("config"); name != "" {
		var err error
		if S, err = confgen.ReadSettingsFile(name); err != nil {
			return S, err
		}
	}
	if v.IsSet("seed") {
		if seed := v.GetInt64("seed"); seed >= 0 {
			S.SetSeed(seed)
		}
	}
	if v.IsSet("max-confs") {
		S.MaxNumOutputConformers = v.GetInt("max-confs")
	}
	if v.IsSet("min-rmsd") {
		S.MinRMSD = v.GetFloat64("min-rmsd")
	}
	if v.IsSet("window") {
		S.EnergyWindow = v.GetFloat64("window")
	}
	if v.IsSet("timeout") {
		S.TimeoutMs = v.GetInt64("timeout")
	}
	return S, S.Validate()
}

func (a *app) runGen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	S, err := a.settings()
	if err != nil {
		return err
	}
	mol, err := confio.ReadFile(a.v.GetString("input"))
	if err != nil {
		return err
	}
	G, err := confgen.NewGenerator(S)
	if err != nil {
		return err
	}
	G.SetLogger(a.log)
	var store *fragdb.Store
	if name := a.v.GetString("fragdb"); name != "" {
		if store, err = fragdb.Open(name); err != nil {
			return err
		}
		defer store.Close()
		n, err := store.Load(ctx, G.FragmentLibrary())
		if err != nil {
			return err
		}
		a.log.Info("fragments loaded", zap.String("db", name), zap.Int("fragments", n))
	}
	fixed, err := cmd.Flags().GetIntSlice("fixed")
	if err != nil {
		return err
	}
	st := G.Generate(ctx, mol, fixed)
	if !st.OK() {
		return fmt.Errorf("conformer generation failed: %s", st)
	}
	if st == confgen.TooMuchSymmetry {
		color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "warning: too many symmetry mappings, conformers were compared without symmetry\n")
	}
	if err := G.SetConformers(mol); err != nil {
		return err
	}
	out := a.v.GetString("output")
	if err := confio.WriteFile(out, mol); err != nil {
		return err
	}
	if store != nil {
		if err := a.saveFragments(ctx, store, G.FragmentLibrary()); err != nil {
			return err
		}
	}
	if name := a.v.GetString("plot"); name != "" {
		p, err := confplot.EnergyHistogram(mol.Energies, 0, "Conformer energies")
		if err != nil {
			return err
		}
		if err := confplot.Save(p, name); err != nil {
			return err
		}
	}
	printEnsemble(cmd.OutOrStdout(), mol.Energies, a.v.GetFloat64("temperature"))
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "%d conformers written to %s\n", len(mol.Energies), out)
	return nil
}

func (a *app) saveFragments(ctx context.Context, store *fragdb.Store, L *confgen.FragmentLibrary) error {
	n, err := store.Save(ctx, L)
	if err != nil {
		return err
	}
	a.log.Info("fragments saved", zap.Int("new", n))
	return nil
}

//printEnsemble writes a table with the energies and populations of the ensemble.
func printEnsemble(w io.Writer, energies []float64, T float64) {
	rel := confgen.RelativeEnergies(energies)
	pop := confgen.Populations(energies, T)
	bold := color.New(color.Bold)
	bold.Fprintf(w, "%4s %16s %12s %10s\n", "#", "E (kcal/mol)", "dE", "pop")
	for i, e := range energies {
		p := 0.0
		if pop != nil {
			p = pop[i]
		}
		fmt.Fprintf(w, "%4d %16.4f %12.4f %10.4f\n", i, e, rel[i], p)
	}
	fmt.Fprintln(w, confgen.Summary(energies))
}
