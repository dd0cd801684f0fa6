/*
 * settings.go, part of goConf.
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
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//Settings controls a conformer generation run. The zero value is not valid, use
//DefaultSettings and modify it.
type Settings struct {
	//TimeoutMs is the wall-clock limit for one Generate call, in milliseconds. 0 means no limit.
	TimeoutMs int64 `toml:"timeout_ms" yaml:"timeout_ms"`

	//MinRMSD is the smallest heavy-atom RMSD (A) allowed between two output conformers.
	MinRMSD float64 `toml:"min_rmsd" yaml:"min_rmsd"`

	//EnergyWindow is the largest energy (kcal/mol) above the minimum an output conformer may have.
	EnergyWindow float64 `toml:"energy_window" yaml:"energy_window"`

	MaxNumOutputConformers int `toml:"max_num_output_conformers" yaml:"max_num_output_conformers"`

	//MaxNumRefinementIterations is the iteration limit for the minimization of each candidate.
	//0 disables the refinement.
	MaxNumRefinementIterations int `toml:"max_num_refinement_iterations" yaml:"max_num_refinement_iterations"`

	//RefinementTolerance is the gradient norm (kcal/mol/A) at which refinement stops.
	RefinementTolerance float64 `toml:"refinement_tolerance" yaml:"refinement_tolerance"`

	//RandomSeed makes the generation reproducible for a given fragment library state: ring
	//conformers already cached (e.g. in the process-wide default library) are reused as they
	//are, so only a fresh library gives the same ensemble for the same seed. If nil, a
	//clock-derived seed is used.
	RandomSeed *int64 `toml:"random_seed,omitempty" yaml:"random_seed,omitempty"`

	//MaxNumSampledConformers caps the number of candidates produced by torsion driving.
	MaxNumSampledConformers int `toml:"max_num_sampled_conformers" yaml:"max_num_sampled_conformers"`

	//TorsionIncrement is the step, in degrees, of the systematic torsion search.
	TorsionIncrement float64 `toml:"torsion_increment" yaml:"torsion_increment"`

	MaxNumFragmentConformers int     `toml:"max_num_fragment_conformers" yaml:"max_num_fragment_conformers"`
	MaxNumSymmetryMappings   int     `toml:"max_num_symmetry_mappings" yaml:"max_num_symmetry_mappings"`
	DielectricConstant       float64 `toml:"dielectric_constant" yaml:"dielectric_constant"`
	DistanceExponent         float64 `toml:"distance_exponent" yaml:"distance_exponent"`
	StrictParameterization   bool    `toml:"strict_parameterization" yaml:"strict_parameterization"`
}

//DefaultSettings returns the default generation settings.
func DefaultSettings() Settings {
	return Settings{
		TimeoutMs:                  60000,
		MinRMSD:                    0.5,
		EnergyWindow:               10,
		MaxNumOutputConformers:     10,
		MaxNumRefinementIterations: 500,
		RefinementTolerance:        1e-3,
		MaxNumSampledConformers:    100,
		TorsionIncrement:           120,
		MaxNumFragmentConformers:   4,
		MaxNumSymmetryMappings:     1000,
		DielectricConstant:         1,
		DistanceExponent:           1,
	}
}

//Validate returns an error describing the first invalid field, if any.
func (S Settings) Validate() error {
	bad := func(format string, a ...any) error {
		return newError(ErrInvalidSettings, fmt.Sprintf(format, a...), "Settings.Validate")
	}
	nonneg := func(v float64) bool { return v >= 0 && !math.IsInf(v, 1) }
	switch {
	case S.TimeoutMs < 0:
		return bad("timeout_ms must be non-negative, got %d", S.TimeoutMs)
	case !nonneg(S.MinRMSD):
		return bad("min_rmsd must be non-negative, got %g", S.MinRMSD)
	case !nonneg(S.EnergyWindow):
		return bad("energy_window must be non-negative, got %g", S.EnergyWindow)
	case S.MaxNumOutputConformers < 1:
		return bad("max_num_output_conformers must be at least 1, got %d", S.MaxNumOutputConformers)
	case S.MaxNumRefinementIterations < 0:
		return bad("max_num_refinement_iterations must be non-negative, got %d", S.MaxNumRefinementIterations)
	case !(S.RefinementTolerance > 0):
		return bad("refinement_tolerance must be positive, got %g", S.RefinementTolerance)
	case S.RandomSeed != nil && *S.RandomSeed < 0:
		return bad("random_seed must be non-negative, got %d", *S.RandomSeed)
	case S.MaxNumSampledConformers < 1:
		return bad("max_num_sampled_conformers must be at least 1, got %d", S.MaxNumSampledConformers)
	case !(S.TorsionIncrement > 0) || S.TorsionIncrement > 180:
		return bad("torsion_increment must be in (0,180], got %g", S.TorsionIncrement)
	case S.MaxNumFragmentConformers < 1:
		return bad("max_num_fragment_conformers must be at least 1, got %d", S.MaxNumFragmentConformers)
	case S.MaxNumSymmetryMappings < 1:
		return bad("max_num_symmetry_mappings must be at least 1, got %d", S.MaxNumSymmetryMappings)
	case !(S.DielectricConstant > 0):
		return bad("dielectric_constant must be positive, got %g", S.DielectricConstant)
	case S.DistanceExponent != 1 && S.DistanceExponent != 2:
		return bad("distance_exponent must be 1 or 2, got %g", S.DistanceExponent)
	}
	return nil
}

//Timeout returns the timeout as a duration. 0 means no limit.
func (S Settings) Timeout() time.Duration {
	return time.Duration(S.TimeoutMs) * time.Millisecond
}

//Seeded returns the seed, and false if none was set.
func (S Settings) Seeded() (uint64, bool) {
	if S.RandomSeed == nil {
		return 0, false
	}
	return uint64(*S.RandomSeed), true
}

//SetSeed sets the random seed.
func (S *Settings) SetSeed(seed int64) {
	S.RandomSeed = &seed
}

//LoadSettings reads TOML settings from r. Keys missing from the input keep their default values,
//unknown keys are an error. The result is validated.
func LoadSettings(r io.Reader) (Settings, error) {
	S := DefaultSettings()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&S); err != nil {
		return DefaultSettings(), newError(ErrInvalidSettings, "failed to parse settings: "+err.Error(), "LoadSettings")
	}
	if err := S.Validate(); err != nil {
		return DefaultSettings(), errDecorate(err, "LoadSettings")
	}
	return S, nil
}

//LoadSettingsYAML is like LoadSettings, for YAML input.
func LoadSettingsYAML(r io.Reader) (Settings, error) {
	S := DefaultSettings()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&S); err != nil && !errors.Is(err, io.EOF) {
		return DefaultSettings(), newError(ErrInvalidSettings, "failed to parse settings: "+err.Error(), "LoadSettingsYAML")
	}
	if err := S.Validate(); err != nil {
		return DefaultSettings(), errDecorate(err, "LoadSettingsYAML")
	}
	return S, nil
}

//ReadSettingsFile loads the settings in the file name, which is parsed as YAML if its extension
//is .yaml or .yml, and as TOML otherwise.
func ReadSettingsFile(name string) (Settings, error) {
	f, err := os.Open(name)
	if err != nil {
		return DefaultSettings(), newError(ErrInvalidSettings, err.Error(), "ReadSettingsFile")
	}
	defer f.Close()
	load := LoadSettings
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		load = LoadSettingsYAML
	}
	S, err := load(f)
	if err != nil {
		return S, errDecorate(err, "ReadSettingsFile")
	}
	return S, nil
}

//Marshal returns the settings in TOML format.
func (S Settings) Marshal() ([]byte, error) {
	return toml.Marshal(S)
}
