/*
 * puckering_test.go, part of goConf.
 *
 * Copyright 2012 Raul Mera <rmera{at}usachDOTcl>
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

package chem

import (
	"math"
	"testing"

	v3 "github.com/rmera/goconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

//sixRing returns a regular hexagon of radius 1.5 A in the xy plane, with the
//given z for each atom.
func sixRing(z ...float64) *v3.Matrix {
	c := v3.Zeros(6)
	for j := 0; j < 6; j++ {
		a := 2 * math.Pi * float64(j) / 6
		c.SetVec(j, r3.Vec{X: 1.5 * math.Cos(a), Y: 1.5 * math.Sin(a), Z: z[j]})
	}
	return c
}

func TestRingPuckering(Te *testing.T) {
	ring := []int{0, 1, 2, 3, 4, 5}
	flat, err := RingPuckering(sixRing(0, 0, 0, 0, 0, 0), ring)
	require.NoError(Te, err)
	assert.InDelta(Te, 0, flat.Q, 1e-9)

	chair, err := RingPuckering(sixRing(0.25, -0.25, 0.25, -0.25, 0.25, -0.25), ring)
	require.NoError(Te, err)
	assert.InDelta(Te, math.Sqrt(6)*0.25, chair.Q, 1e-9)
	require.Len(Te, chair.Amplitudes, 2)
	require.Len(Te, chair.Phases, 1)
	assert.InDelta(Te, 0, chair.Amplitudes[0], 1e-9)
	assert.InDelta(Te, chair.Q, math.Abs(chair.Amplitudes[1]), 1e-9)
	theta, err := chair.Theta()
	require.NoError(Te, err)
	//0 or 180, depending on the orientation of the mean plane.
	assert.InDelta(Te, 0, math.Sin(Deg2Rad(theta)), 1e-6)

	//boat: atoms 0 and 3 out of the plane on the same side.
	boat, err := RingPuckering(sixRing(0.5, 0, 0, 0.5, 0, 0), ring)
	require.NoError(Te, err)
	theta, err = boat.Theta()
	require.NoError(Te, err)
	assert.InDelta(Te, 90, math.Abs(theta), 1e-6)
	//the amplitudes account for the whole puckering.
	assert.InDelta(Te, boat.Q*boat.Q, boat.Amplitudes[0]*boat.Amplitudes[0]+boat.Amplitudes[1]*boat.Amplitudes[1], 1e-9)

	five := v3.Zeros(5)
	for j := 0; j < 5; j++ {
		a := 2 * math.Pi * float64(j) / 5
		five.SetVec(j, r3.Vec{X: math.Cos(a), Y: math.Sin(a), Z: -0.4 * math.Cos(4*math.Pi*float64(j)/5)})
	}
	env, err := RingPuckering(five, []int{0, 1, 2, 3, 4})
	require.NoError(Te, err)
	require.Len(Te, env.Amplitudes, 1)
	assert.InDelta(Te, env.Q, env.Amplitudes[0], 1e-9)
	assert.InDelta(Te, 0, env.Phases[0], 1e-6)
	_, err = env.Theta()
	assert.Error(Te, err)

	_, err = RingPuckering(five, []int{0, 1, 2})
	assert.Error(Te, err)
	_, err = RingPuckering(five, []int{0, 1, 2, 9})
	assert.Error(Te, err)
}
