/*
 * root.go, part of goConf.
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

//Package cli implements the goconf command line interface.
package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

//envPrefix is the prefix of the environment variables that override flags, so
//--max-confs can be given as GOCONF_MAX_CONFS.
const envPrefix = "GOCONF"

//app holds what the commands share.
type app struct {
	v   *viper.Viper
	log *zap.Logger
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

//newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	a := &app{v: newViper(), log: zap.NewNop()}
	root := &cobra.Command{
		Use:   "goconf",
		Short: "Conformer generation for typed molecules",
		Long: `goconf builds conformer ensembles for molecules with MMFF94 atom types,
using distance geometry for the initial structures, torsion driving for
sampling and MMFF94 minimization for refinement.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if err := a.v.BindPFlags(cmd.InheritedFlags()); err != nil {
				return err
			}
			l, err := newLogger(a.v.GetString("log-level"), a.v.GetBool("log-json"), os.Stderr)
			if err != nil {
				return err
			}
			a.log = l
			zap.ReplaceGlobals(l)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.log.Sync()
		},
	}
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("log-json", false, "Log in JSON format, even on a terminal")
	root.PersistentFlags().StringP("config", "c", "", "Settings file (TOML, or YAML with a .yaml/.yml extension)")
	root.AddCommand(a.genCmd())
	root.AddCommand(a.scanCmd())
	root.AddCommand(a.layoutCmd())
	root.AddCommand(a.ringsCmd())
	return root
}

//Execute runs the root command. An interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
