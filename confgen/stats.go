/*
 * stats.go, part of goConf.
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

package confgen

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//GasConstant in kcal/(mol K).
const GasConstant = 0.0019872041

//EnsembleSummary describes the energies of an ensemble, in kcal/mol.
type EnsembleSummary struct {
	N                  int
	Min, Max           float64
	Mean, StdDev, Span float64
}

func (E EnsembleSummary) String() string {
	return fmt.Sprintf("%d conformers, E min %.4f max %.4f mean %.4f sd %.4f span %.4f", E.N, E.Min, E.Max, E.Mean, E.StdDev, E.Span)
}

//Summary returns the summary of the energies es.
func Summary(es []float64) EnsembleSummary {
	if len(es) == 0 {
		return EnsembleSummary{}
	}
	ret := EnsembleSummary{N: len(es), Min: floats.Min(es), Max: floats.Max(es)}
	ret.Span = ret.Max - ret.Min
	if len(es) == 1 {
		ret.Mean = es[0]
		return ret
	}
	ret.Mean, ret.StdDev = stat.MeanStdDev(es, nil)
	return ret
}

//RelativeEnergies returns es shifted so the lowest energy is 0.
func RelativeEnergies(es []float64) []float64 {
	if len(es) == 0 {
		return nil
	}
	ret := append([]float64(nil), es...)
	floats.AddConst(-floats.Min(es), ret)
	return ret
}

//Populations returns the Boltzmann population of each conformer at the temperature T (K).
func Populations(es []float64, T float64) []float64 {
	if len(es) == 0 || T <= 0 {
		return nil
	}
	logw := make([]float64, len(es))
	for i, e := range es {
		logw[i] = -e / (GasConstant * T)
	}
	lz := floats.LogSumExp(logw)
	for i := range logw {
		logw[i] = math.Exp(logw[i] - lz)
	}
	return logw
}
