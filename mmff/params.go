/*
 * params.go, part of goConf.
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

package mmff

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

//DefaultParameterSet is the ID of the parameter set embedded in the package.
const DefaultParameterSet = "mmff94-reduced"

//go:embed mmff94_reduced.par
var defaultParams []byte

type BondParams struct {
	Kb, R0 float64
}

type AngleParams struct {
	Ka, Theta0 float64
}

//StretchBendParams couples the I-J bond (KIJK) and the K-J bond (KKJI) to the I-J-K angle.
type StretchBendParams struct {
	KIJK, KKJI float64
}

type OutOfPlaneParams struct {
	Koop float64
}

type TorsionParams struct {
	V1, V2, V3 float64
}

//VdwParams are the per-type MMFF94 van der Waals parameters. DA is 'D' for
//donors, 'A' for acceptors and '-' otherwise.
type VdwParams struct {
	Alpha, N, A, G float64
	DA             byte
}

type key2 struct{ t, i, j int }
type key3 struct{ t, i, j, k int }
type key4 struct{ t, i, j, k, l int }

//Parameters is an immutable set of force field parameter tables. Lookups are safe
//for concurrent use.
type Parameters struct {
	ID       string
	bonds    map[key2]BondParams
	angles   map[key3]AngleParams
	stbn     map[key3]StretchBendParams
	oop      map[key4]OutOfPlaneParams
	torsions map[key4]TorsionParams
	vdw      map[int]VdwParams
}

func newParameters(id string) *Parameters {
	return &Parameters{
		ID:       id,
		bonds:    make(map[key2]BondParams),
		angles:   make(map[key3]AngleParams),
		stbn:     make(map[key3]StretchBendParams),
		oop:      make(map[key4]OutOfPlaneParams),
		torsions: make(map[key4]TorsionParams),
		vdw:      make(map[int]VdwParams),
	}
}

/***Direction normalization***/

func bondKey(t, i, j int) key2 {
	if i > j {
		i, j = j, i
	}
	return key2{t, i, j}
}

//angleKey returns the normalized key and whether the terminals were swapped.
func angleKey(t, i, j, k int) (key3, bool) {
	if i > k {
		return key3{t, k, j, i}, true
	}
	return key3{t, i, j, k}, false
}

func torsionKey(t, i, j, k, l int) key4 {
	if j > k || (j == k && i > l) {
		return key4{t, l, k, j, i}
	}
	return key4{t, i, j, k, l}
}

//oopKey puts the center first and sorts the three other types.
func oopKey(center int, others ...int) key4 {
	o := append([]int(nil), others...)
	sort.Ints(o)
	return key4{0, center, o[0], o[1], o[2]}
}

/***Lookups***/

//Bond returns the parameters for a bond of type bt between atoms of types i and j.
func (P *Parameters) Bond(bt, i, j int) (BondParams, bool) {
	if b, ok := P.bonds[bondKey(bt, i, j)]; ok {
		return b, true
	}
	if bt != 0 {
		b, ok := P.bonds[bondKey(0, i, j)]
		return b, ok
	}
	return BondParams{}, false
}

//steps returns the type-index step-down sequence.
func steps(t int) []int {
	if t == 0 {
		return []int{0}
	}
	return []int{t, 0}
}

//Angle returns the parameters for the angle i-j-k of type at, where j is the center.
//Entries with wildcard (0) terminal types are used when no exact entry exists.
func (P *Parameters) Angle(at, i, j, k int) (AngleParams, bool) {
	for _, t := range steps(at) {
		for _, p := range [][2]int{{i, k}, {0, k}, {i, 0}, {0, 0}} {
			key, _ := angleKey(t, p[0], j, p[1])
			if a, ok := P.angles[key]; ok {
				return a, true
			}
		}
	}
	return AngleParams{}, false
}

//StretchBend returns the stretch-bend parameters for the angle i-j-k of type sbt,
//oriented as requested, regardless of how they are stored.
func (P *Parameters) StretchBend(sbt, i, j, k int) (StretchBendParams, bool) {
	for _, t := range steps(sbt) {
		for _, p := range [][2]int{{i, k}, {0, k}, {i, 0}, {0, 0}} {
			key, swapped := angleKey(t, p[0], j, p[1])
			if s, ok := P.stbn[key]; ok {
				if swapped {
					s.KIJK, s.KKJI = s.KKJI, s.KIJK
				}
				return s, true
			}
		}
	}
	return StretchBendParams{}, false
}

//OutOfPlane returns the out-of-plane parameters for a trigonal center of type j bonded to
//atoms of types i, k and l.
func (P *Parameters) OutOfPlane(i, j, k, l int) (OutOfPlaneParams, bool) {
	if o, ok := P.oop[oopKey(j, i, k, l)]; ok {
		return o, true
	}
	o, ok := P.oop[oopKey(j, 0, 0, 0)]
	return o, ok
}

//Torsion returns the parameters for the torsion i-j-k-l of type tt.
func (P *Parameters) Torsion(tt, i, j, k, l int) (TorsionParams, bool) {
	for _, t := range steps(tt) {
		for _, p := range [][2]int{{i, l}, {0, l}, {i, 0}, {0, 0}} {
			if v, ok := P.torsions[torsionKey(t, p[0], j, k, p[1])]; ok {
				return v, true
			}
		}
	}
	return TorsionParams{}, false
}

//Vdw returns the van der Waals parameters for the atom type t.
func (P *Parameters) Vdw(t int) (VdwParams, bool) {
	v, ok := P.vdw[t]
	return v, ok
}

//Len returns the total number of entries in all the tables.
func (P *Parameters) Len() int {
	return len(P.bonds) + len(P.angles) + len(P.stbn) + len(P.oop) + len(P.torsions) + len(P.vdw)
}

/***Loading***/

//Load reads a parameter set from r. Each non-empty line not starting with # is a record:
//
//	BOND  bt  I J        kb r0
//	ANGLE at  I J K      ka theta0
//	STBN  sbt I J K      kbaIJK kbaKJI
//	OOP   0   I J K L    koop          (J is the center)
//	TORS  tt  I J K L    V1 V2 V3
//	VDW   I   alpha N A G DA
//
//Type 0 is a wildcard. Two records with the same normalized key are an error.
func Load(r io.Reader, id string) (*Parameters, error) {
	P := newParameters(id)
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if err := P.parseRecord(fields); err != nil {
			return nil, newError(ErrParse, fmt.Sprintf("line %d: %s", lineno, err.Error()), "Load")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, newError(ErrParse, err.Error(), "Load")
	}
	return P, nil
}

var recordLen = map[string][2]int{
	//number of integer and float fields after the keyword
	"BOND":  {3, 2},
	"ANGLE": {4, 2},
	"STBN":  {4, 2},
	"OOP":   {5, 1},
	"TORS":  {5, 3},
}

func (P *Parameters) parseRecord(fields []string) error {
	kw := strings.ToUpper(fields[0])
	if kw == "VDW" {
		return P.parseVdw(fields)
	}
	l, ok := recordLen[kw]
	if !ok {
		return fmt.Errorf("unknown record %q", fields[0])
	}
	if len(fields) != 1+l[0]+l[1] {
		return fmt.Errorf("%s record needs %d fields, got %d", kw, l[0]+l[1], len(fields)-1)
	}
	ints := make([]int, l[0])
	for i := range ints {
		v, err := strconv.Atoi(fields[1+i])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid type %q", fields[1+i])
		}
		ints[i] = v
	}
	fl := make([]float64, l[1])
	for i := range fl {
		v, err := strconv.ParseFloat(fields[1+l[0]+i], 64)
		if err != nil {
			return fmt.Errorf("invalid coefficient %q", fields[1+l[0]+i])
		}
		fl[i] = v
	}
	dup := fmt.Errorf("duplicated %s record for types %v", kw, ints)
	switch kw {
	case "BOND":
		k := bondKey(ints[0], ints[1], ints[2])
		if _, ok := P.bonds[k]; ok {
			return dup
		}
		P.bonds[k] = BondParams{Kb: fl[0], R0: fl[1]}
	case "ANGLE":
		k, _ := angleKey(ints[0], ints[1], ints[2], ints[3])
		if _, ok := P.angles[k]; ok {
			return dup
		}
		P.angles[k] = AngleParams{Ka: fl[0], Theta0: fl[1]}
	case "STBN":
		k, swapped := angleKey(ints[0], ints[1], ints[2], ints[3])
		if _, ok := P.stbn[k]; ok {
			return dup
		}
		s := StretchBendParams{KIJK: fl[0], KKJI: fl[1]}
		if swapped {
			s.KIJK, s.KKJI = s.KKJI, s.KIJK
		}
		P.stbn[k] = s
	case "OOP":
		k := oopKey(ints[2], ints[1], ints[3], ints[4])
		if _, ok := P.oop[k]; ok {
			return dup
		}
		P.oop[k] = OutOfPlaneParams{Koop: fl[0]}
	case "TORS":
		k := torsionKey(ints[0], ints[1], ints[2], ints[3], ints[4])
		if _, ok := P.torsions[k]; ok {
			return dup
		}
		P.torsions[k] = TorsionParams{V1: fl[0], V2: fl[1], V3: fl[2]}
	}
	return nil
}

func (P *Parameters) parseVdw(fields []string) error {
	if len(fields) != 7 {
		return fmt.Errorf("VDW record needs 6 fields, got %d", len(fields)-1)
	}
	t, err := strconv.Atoi(fields[1])
	if err != nil || t <= 0 {
		return fmt.Errorf("invalid type %q", fields[1])
	}
	var v [4]float64
	for i := range v {
		v[i], err = strconv.ParseFloat(fields[2+i], 64)
		if err != nil {
			return fmt.Errorf("invalid coefficient %q", fields[2+i])
		}
	}
	da := fields[6]
	if da != "D" && da != "A" && da != "-" {
		return fmt.Errorf("donor/acceptor flag must be D, A or -, got %q", da)
	}
	if _, ok := P.vdw[t]; ok {
		return fmt.Errorf("duplicated VDW record for type %d", t)
	}
	P.vdw[t] = VdwParams{Alpha: v[0], N: v[1], A: v[2], G: v[3], DA: da[0]}
	return nil
}

//LoadDefaults loads one of the parameter sets embedded in the package.
func LoadDefaults(id string) (*Parameters, error) {
	switch id {
	case DefaultParameterSet, "mmff94", "":
		return Load(bytes.NewReader(defaultParams), DefaultParameterSet)
	}
	return nil, newError(ErrUnknownParameterSet, id, "LoadDefaults")
}

var (
	defaultOnce sync.Once
	defaultSet  *Parameters
)

//Default returns the process-wide default parameter set. It is built the first
//time it is requested and never modified afterwards.
func Default() *Parameters {
	defaultOnce.Do(func() {
		var err error
		defaultSet, err = LoadDefaults(DefaultParameterSet)
		if err != nil {
			panic("mmff: embedded parameters are corrupted: " + err.Error())
		}
	})
	return defaultSet
}
