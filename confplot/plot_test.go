/*
 * plot_test.go, part of goConf.
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

package confplot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/goconf/confgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTorsionProfile(Te *testing.T) {
	var points []confgen.ScanPoint
	for a := -180.0; a < 180; a += 30 {
		points = append(points, confgen.ScanPoint{Angle: a + 30, Energy: 2 + float64(int(a)%90)/90})
	}
	p, err := TorsionProfile(points, "Butane C1-C2")
	require.NoError(Te, err)
	name := filepath.Join(Te.TempDir(), "profile.png")
	require.NoError(Te, Save(p, name))
	info, err := os.Stat(name)
	require.NoError(Te, err)
	assert.Greater(Te, info.Size(), int64(0))

	_, err = TorsionProfile(nil, "empty")
	assert.Error(Te, err)
}

func TestEnergyPlots(Te *testing.T) {
	es := []float64{-10, -9.5, -9.4, -8, -7.1, -7}
	h, err := EnergyHistogram(es, 0, "Ensemble")
	require.NoError(Te, err)
	var buf bytes.Buffer
	require.NoError(Te, Write(&buf, h, "svg"))
	assert.Contains(Te, buf.String(), "<svg")

	p, err := Energies(es, "Ensemble")
	require.NoError(Te, err)
	buf.Reset()
	require.NoError(Te, Write(&buf, p, ".PNG"))
	assert.Equal(Te, []byte("\x89PNG"), buf.Bytes()[:4])

	_, err = EnergyHistogram(nil, 3, "empty")
	assert.Error(Te, err)
	assert.Equal(Te, "png", FormatOf("plot"))
	assert.Equal(Te, "svg", FormatOf("a/plot.SVG"))
}
