/*
 * plot.go, part of goConf.
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

//Package confplot draws torsion energy profiles and conformer energy distributions.
package confplot

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rmera/goconf/confgen"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

//Size is the side of the square plots, in inches.
var Size = 4 * vg.Inch

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

//TorsionProfile plots the relative energies of a torsion scan against the dihedral angle.
//The lowest-energy point is highlighted.
func TorsionProfile(points []confgen.ScanPoint, title string) (*plot.Plot, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("confplot: no scan points to plot")
	}
	es := make([]float64, len(points))
	for i, v := range points {
		es[i] = v.Energy
	}
	rel := confgen.RelativeEnergies(es)
	pts := make(plotter.XYs, len(points))
	for i, v := range points {
		pts[i].X = v.Angle
		pts[i].Y = rel[i]
	}
	//scans start at the input dihedral, so the points wrap around.
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	p := basicPlot(title, "Dihedral (deg)", "Relative energy (kcal/mol)")
	//Constant axes
	p.X.Min = -180
	p.X.Max = 180
	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	r, g, b := colors(0, 1)
	l.LineStyle.Color = color.RGBA{R: r, G: g, B: b, A: 255}
	s.GlyphStyle.Color = l.LineStyle.Color
	p.Add(l, s)
	lowest := 0
	for i, v := range pts {
		if v.Y < pts[lowest].Y {
			lowest = i
		}
	}
	mark, err := plotter.NewScatter(pts[lowest : lowest+1])
	if err != nil {
		return nil, err
	}
	mark.GlyphStyle.Shape = draw.PyramidGlyph{}
	mark.GlyphStyle.Radius = 2 * s.GlyphStyle.Radius
	mark.GlyphStyle.Color = color.Black
	p.Add(mark)
	return p, nil
}

//Energies plots the relative energy of each conformer against its index. Each point
//gets its own color.
func Energies(energies []float64, title string) (*plot.Plot, error) {
	if len(energies) == 0 {
		return nil, fmt.Errorf("confplot: no energies to plot")
	}
	rel := confgen.RelativeEnergies(energies)
	p := basicPlot(title, "Conformer", "Relative energy (kcal/mol)")
	temp := make(plotter.XYs, 1)
	for key, val := range rel {
		temp[0].X = float64(key)
		temp[0].Y = val
		s, err := plotter.NewScatter(temp)
		if err != nil {
			return nil, err
		}
		r, g, b := colors(key, len(rel))
		s.GlyphStyle.Color = color.RGBA{R: r, G: g, B: b, A: 255}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
	}
	return p, nil
}

//EnergyHistogram plots the distribution of the relative energies of a conformer
//ensemble, using bins bins. If bins is not positive, a number is chosen from the
//size of the ensemble.
func EnergyHistogram(energies []float64, bins int, title string) (*plot.Plot, error) {
	if len(energies) == 0 {
		return nil, fmt.Errorf("confplot: no energies to plot")
	}
	if bins <= 0 {
		bins = int(math.Ceil(math.Sqrt(float64(len(energies)))))
	}
	rel := confgen.RelativeEnergies(energies)
	p := basicPlot(title, "Relative energy (kcal/mol)", "Conformers")
	h, err := plotter.NewHist(plotter.Values(rel), bins)
	if err != nil {
		return nil, err
	}
	r, g, b := colors(1, 3)
	h.FillColor = color.RGBA{R: r, G: g, B: b, A: 160}
	p.Add(h)
	return p, nil
}

//Save writes p to the file name. The format is taken from the extension, which
//can be any supported by gonum/plot (png, svg, pdf, eps, jpg, tif).
func Save(p *plot.Plot, name string) error {
	if err := p.Save(Size, Size, name); err != nil {
		return fmt.Errorf("confplot: failed to save %s: %w", name, err)
	}
	return nil
}

//Write writes p in the given format to w.
func Write(w io.Writer, p *plot.Plot, format string) error {
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	wt, err := p.WriterTo(Size, Size, format)
	if err != nil {
		return fmt.Errorf("confplot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

//FormatOf returns the image format for the file name, png if there is no extension.
func FormatOf(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "png"
	}
	return ext
}
