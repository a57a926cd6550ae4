package correlation

import (
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/modeldiag/pkg/errors"
)

// bandGrid exposes a correlation matrix to plotter.HeatMap. Row 0 of the
// matrix is drawn at the top, so grid row r maps to matrix row size-1-r.
// Z is the band index, with NumBands standing for the diagonal.
type bandGrid struct {
	m *Matrix
}

func (g bandGrid) Dims() (c, r int) {
	n := g.m.Size()
	return n, n
}

func (g bandGrid) Z(c, r int) float64 {
	b := Classify(g.m, g.m.Size()-1-r, c)
	if b < 0 {
		return NumBands
	}
	return float64(b)
}

func (g bandGrid) X(c int) float64 { return float64(c) }
func (g bandGrid) Y(r int) float64 { return float64(r) }

type bandPalette struct{}

func (bandPalette) Colors() []color.Color {
	cs := make([]color.Color, len(paletteColors))
	for i, c := range paletteColors {
		cs[i] = c
	}
	return cs
}

// Heatmap renders the banded correlation matrix of res as an image in the
// given format ("png", "svg", "pdf", ...). Each cell is annotated with its
// value to two decimals.
func Heatmap(w io.Writer, res *Result, format string, width, height vg.Length) error {
	const op = "correlation.Heatmap"
	if res == nil || res.Matrix == nil {
		return errors.NewMalformedInputError(op, "nil result", nil)
	}
	m := res.Matrix
	n := m.Size()
	if n < 2 {
		return errors.NewInsufficientDataError(op, 2, n)
	}

	p := plot.New()
	p.Title.Text = "Feature correlation"

	h := plotter.NewHeatMap(bandGrid{m: m}, bandPalette{})
	h.Min, h.Max = 0, NumBands
	p.Add(h)

	xys := make(plotter.XYs, 0, n*n)
	labels := make([]string, 0, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(n - 1 - r)})
			labels = append(labels, strconv.FormatFloat(m.At(r, c), 'f', 2, 64))
		}
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return errors.Wrap(err, op)
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = text.XCenter
		l.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(l)

	rows := m.Header()
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	p.NominalX(m.Header()...)
	p.NominalY(rows...)

	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return errors.Wrapf(err, "%s: format %q", op, format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, op)
	}
	return nil
}
