/*
 * store_test.go, part of goConf.
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

package fragdb

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	chem "github.com/rmera/goconf"
	"github.com/rmera/goconf/confgen"
	v3 "github.com/rmera/goconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func ring(Te *testing.T, n int, order []int) *chem.Topology {
	top := chem.NewTopology(0, 1)
	for i := 0; i < n; i++ {
		top.AddAtom(&chem.Atom{Symbol: "C", MMFFType: 1, Hyb: chem.SP3})
	}
	for i := 0; i < n; i++ {
		_, err := top.AddBond(order[i], order[(i+1)%n], 1)
		require.NoError(Te, err)
	}
	return top
}

func polygon(n int) *v3.Matrix {
	c := v3.Zeros(n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		c.SetVec(i, r3.Vec{X: 1.5 * math.Cos(a), Y: 1.5 * math.Sin(a)})
	}
	return c
}

func newTestStore(Te *testing.T) *Store {
	Te.Helper()
	S, err := Open(filepath.Join(Te.TempDir(), "frag.db"))
	require.NoError(Te, err)
	Te.Cleanup(func() { S.Close() })
	return S
}

func TestSaveLoad(Te *testing.T) {
	ctx := context.Background()
	S := newTestStore(Te)
	L := confgen.NewFragmentLibrary()
	require.True(Te, L.Add(ring(Te, 6, []int{0, 1, 2, 3, 4, 5}), []*v3.Matrix{polygon(6), polygon(6)}))
	require.True(Te, L.Add(ring(Te, 5, []int{0, 1, 2, 3, 4}), []*v3.Matrix{polygon(5)}))

	n, err := S.Save(ctx, L)
	require.NoError(Te, err)
	assert.Equal(Te, 2, n)
	//saving again adds nothing.
	n, err = S.Save(ctx, L)
	require.NoError(Te, err)
	assert.Equal(Te, 0, n)
	total, err := S.Len(ctx)
	require.NoError(Te, err)
	assert.Equal(Te, 2, total)

	L2 := confgen.NewFragmentLibrary()
	n, err = S.Load(ctx, L2)
	require.NoError(Te, err)
	assert.Equal(Te, 2, n)
	assert.Equal(Te, 2, L2.Len())
	//an isomorphic ring with a different atom numbering is found.
	confs, ok := L2.Lookup(ring(Te, 6, []int{0, 2, 4, 1, 3, 5}))
	require.True(Te, ok)
	require.Len(Te, confs, 2)

	n, err = S.Load(ctx, L2)
	require.NoError(Te, err)
	assert.Equal(Te, 0, n)
}

func TestSaveNewOnly(Te *testing.T) {
	ctx := context.Background()
	S := newTestStore(Te)
	L := confgen.NewFragmentLibrary()
	L.Add(ring(Te, 6, []int{0, 1, 2, 3, 4, 5}), []*v3.Matrix{polygon(6)})
	_, err := S.Save(ctx, L)
	require.NoError(Te, err)
	L.Clear()
	L.Add(ring(Te, 6, []int{5, 4, 3, 2, 1, 0}), []*v3.Matrix{polygon(6)})
	L.Add(ring(Te, 7, []int{0, 1, 2, 3, 4, 5, 6}), []*v3.Matrix{polygon(7)})
	n, err := S.Save(ctx, L)
	require.NoError(Te, err)
	assert.Equal(Te, 1, n)
	total, err := S.Len(ctx)
	require.NoError(Te, err)
	assert.Equal(Te, 2, total)
}

func TestErrors(Te *testing.T) {
	_, err := Open(filepath.Join(Te.TempDir(), "missing", "frag.db"))
	require.Error(Te, err)
	assert.ErrorIs(Te, err, ErrDatabase)
	var ce chem.Error
	require.ErrorAs(Te, err, &ce)
	assert.Equal(Te, []string{"Open", "caller"}, ce.Decorate("caller"))

	S := newTestStore(Te)
	L := confgen.NewFragmentLibrary()
	L.Add(ring(Te, 6, []int{0, 1, 2, 3, 4, 5}), []*v3.Matrix{polygon(6)})
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = S.Save(cancelled, L)
	assert.ErrorIs(Te, err, ErrDatabase)
	assert.ErrorIs(Te, err, context.Canceled)
}

func TestLoadSkipsCorrupted(Te *testing.T) {
	ctx := context.Background()
	S := newTestStore(Te)
	L := confgen.NewFragmentLibrary()
	L.Add(ring(Te, 6, []int{0, 1, 2, 3, 4, 5}), []*v3.Matrix{polygon(6)})
	_, err := S.Save(ctx, L)
	require.NoError(Te, err)
	_, err = S.db.ExecContext(ctx, `INSERT INTO fragments (key, atoms, conformers, data) VALUES ('x', 1, 1, '{"atoms": 3')`)
	require.NoError(Te, err)
	L2 := confgen.NewFragmentLibrary()
	n, err := S.Load(ctx, L2)
	require.NoError(Te, err)
	assert.Equal(Te, 1, n)
	assert.Equal(Te, 1, L2.Len())
}
