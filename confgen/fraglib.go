/*
 * fraglib.go, part of goConf.
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
	"sort"
	"strings"
	"sync"

	chem "github.com/rmera/goconf"
	"github.com/rmera/goconf/chemgraph"
	v3 "github.com/rmera/goconf/v3"
)

type fragmentEntry struct {
	top   *chem.Topology
	confs []*v3.Matrix
}

//FragmentLibrary caches conformers of ring systems, so each distinct ring system is
//only searched once. It is safe for concurrent use.
type FragmentLibrary struct {
	mu      sync.RWMutex
	entries map[string][]*fragmentEntry
}

//NewFragmentLibrary returns an empty library.
func NewFragmentLibrary() *FragmentLibrary {
	return &FragmentLibrary{entries: make(map[string][]*fragmentEntry)}
}

var (
	defaultLibOnce sync.Once
	defaultLib     *FragmentLibrary
)

//DefaultFragmentLibrary returns the process-wide library, created the first time it is requested.
func DefaultFragmentLibrary() *FragmentLibrary {
	defaultLibOnce.Do(func() {
		defaultLib = NewFragmentLibrary()
	})
	return defaultLib
}

//FragmentKey returns a string that is equal for isomorphic fragments. Different fragments
//may, rarely, share a key, so entries with the same key are told apart by an isomorphism test.
func FragmentKey(top chem.Bonder) string {
	labels := make([]string, top.Len())
	for i := range labels {
		at := top.Atom(i)
		labels[i] = fmt.Sprintf("%s%d:%d", at.Symbol, at.MMFFType, len(top.Neighbors(i)))
	}
	bonds := make([]string, 0, top.NumBonds())
	for i := 0; i < top.NumBonds(); i++ {
		b := top.Bond(i)
		l1, l2 := labels[b.At1.Index], labels[b.At2.Index]
		if l1 > l2 {
			l1, l2 = l2, l1
		}
		bonds = append(bonds, fmt.Sprintf("%s-%s/%g", l1, l2, b.Order))
	}
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	sort.Strings(bonds)
	return strings.Join(sorted, ",") + "|" + strings.Join(bonds, ",")
}

func (L *FragmentLibrary) find(top *chem.Topology) (*fragmentEntry, []int) {
	for _, e := range L.entries[FragmentKey(top)] {
		if m, ok := chemgraph.Isomorphism(top, e.top); ok {
			return e, m
		}
	}
	return nil, nil
}

//Lookup returns copies of the conformers stored for the fragment top, with the atoms
//in the order of top, and false if the fragment is not in the library.
func (L *FragmentLibrary) Lookup(top *chem.Topology) ([]*v3.Matrix, bool) {
	L.mu.RLock()
	defer L.mu.RUnlock()
	e, m := L.find(top)
	if e == nil {
		return nil, false
	}
	ret := make([]*v3.Matrix, 0, len(e.confs))
	for _, c := range e.confs {
		mapped := v3.Zeros(top.Len())
		for i, j := range m {
			mapped.SetVec(i, c.Vec(j))
		}
		ret = append(ret, mapped)
	}
	return ret, true
}

//Add stores conformers for the fragment top. It returns false, and does nothing, if
//the fragment was already present.
func (L *FragmentLibrary) Add(top *chem.Topology, confs []*v3.Matrix) bool {
	L.mu.Lock()
	defer L.mu.Unlock()
	if e, _ := L.find(top); e != nil {
		return false
	}
	e := &fragmentEntry{top: top.Copy()}
	for _, c := range confs {
		e.confs = append(e.confs, c.Clone())
	}
	key := FragmentKey(top)
	L.entries[key] = append(L.entries[key], e)
	return true
}

//Fragment is a ring system and its conformers.
type Fragment struct {
	Topology   *chem.Topology
	Conformers []*v3.Matrix
}

//Fragments returns copies of all the fragments in the library, sorted by key.
func (L *FragmentLibrary) Fragments() []Fragment {
	L.mu.RLock()
	defer L.mu.RUnlock()
	keys := make([]string, 0, len(L.entries))
	for k := range L.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var ret []Fragment
	for _, k := range keys {
		for _, e := range L.entries[k] {
			f := Fragment{Topology: e.top.Copy()}
			for _, c := range e.confs {
				f.Conformers = append(f.Conformers, c.Clone())
			}
			ret = append(ret, f)
		}
	}
	return ret
}

//Len returns the number of fragments in the library.
func (L *FragmentLibrary) Len() int {
	L.mu.RLock()
	defer L.mu.RUnlock()
	n := 0
	for _, v := range L.entries {
		n += len(v)
	}
	return n
}

//Clear empties the library.
func (L *FragmentLibrary) Clear() {
	L.mu.Lock()
	defer L.mu.Unlock()
	L.entries = make(map[string][]*fragmentEntry)
}
