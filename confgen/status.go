/*
 * status.go, part of goConf.
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

//Status is the outcome of a generation run.
type Status int

const (
	Success Status = iota
	//TooMuchSymmetry means that the molecule had more symmetry mappings than allowed, so
	//only the identity mapping was used to compare conformers. The ensemble may contain
	//conformers that are equivalent by symmetry.
	TooMuchSymmetry
	Timeout
	Aborted
	ForceFieldSetupFailed
	ForceFieldMinimizationFailed
	FragmentLibraryNotSet
	FragmentConfGenFailed
	FragmentConfGenTimeout
	//FragmentAlreadyProcessed is reported by PrepareFragments when every ring system
	//of the molecule was already in the library.
	FragmentAlreadyProcessed
	TorsionDrivingFailed
	ConfGenFailed
	NoFixedSubstructCoords
)

var statusNames = [...]string{
	Success:                      "SUCCESS",
	TooMuchSymmetry:              "TOO_MUCH_SYMMETRY",
	Timeout:                      "TIMEOUT",
	Aborted:                      "ABORTED",
	ForceFieldSetupFailed:        "FORCEFIELD_SETUP_FAILED",
	ForceFieldMinimizationFailed: "FORCEFIELD_MINIMIZATION_FAILED",
	FragmentLibraryNotSet:        "FRAGMENT_LIBRARY_NOT_SET",
	FragmentConfGenFailed:        "FRAGMENT_CONF_GEN_FAILED",
	FragmentConfGenTimeout:       "FRAGMENT_CONF_GEN_TIMEOUT",
	FragmentAlreadyProcessed:     "FRAGMENT_ALREADY_PROCESSED",
	TorsionDrivingFailed:         "TORSION_DRIVING_FAILED",
	ConfGenFailed:                "CONF_GEN_FAILED",
	NoFixedSubstructCoords:       "NO_FIXED_SUBSTRUCT_COORDS",
}

func (S Status) String() string {
	if S < 0 || int(S) >= len(statusNames) {
		return "UNKNOWN_STATUS"
	}
	return statusNames[S]
}

//OK returns true if the status comes with a usable ensemble.
func (S Status) OK() bool {
	return S == Success || S == TooMuchSymmetry
}

//Stage is the step of the generation pipeline a Generator is in.
type Stage int

const (
	Uninitialized Stage = iota
	Preparing
	FragmentConformerGeneration
	TorsionDriving
	Refinement
	Selection
	Done
)

var stageNames = [...]string{
	Uninitialized:               "UNINITIALIZED",
	Preparing:                   "PREPARING",
	FragmentConformerGeneration: "FRAGMENT_CONFORMER_GENERATION",
	TorsionDriving:              "TORSION_DRIVING",
	Refinement:                  "REFINEMENT",
	Selection:                   "SELECTION",
	Done:                        "DONE",
}

func (S Stage) String() string {
	if S < 0 || int(S) >= len(stageNames) {
		return "UNKNOWN_STAGE"
	}
	return stageNames[S]
}
