package correlation

import (
	"fmt"
	"image/color"
	"math"
)

// Band is one of ten equal-width intervals of [-1, 1] used to colour a
// correlation cell. Band k covers [-1+0.2k, -0.8+0.2k); an off-diagonal
// value of exactly 1 belongs to band 9.
type Band int

const (
	// NumBands is the number of value bands.
	NumBands = 10

	// BandWidth is the width of each band.
	BandWidth = 0.2

	// BandDiagonal marks self-correlation cells regardless of value.
	BandDiagonal Band = -1

	// BandUndefined marks a NaN value. Compute never produces one.
	BandUndefined Band = -2
)

// lowerBounds are written out rather than computed so that boundary values
// such as -0.8 land in the band they name.
var lowerBounds = [NumBands]float64{-1, -0.8, -0.6, -0.4, -0.2, 0, 0.2, 0.4, 0.6, 0.8}

// BandOf returns the band of v. Values outside [-1, 1] are clamped.
func BandOf(v float64) Band {
	if math.IsNaN(v) {
		return BandUndefined
	}
	for k := NumBands - 1; k > 0; k-- {
		if v >= lowerBounds[k] {
			return Band(k)
		}
	}
	return 0
}

// Classify returns the band of cell (i, j) of m; diagonal cells get BandDiagonal.
func Classify(m *Matrix, i, j int) Band {
	if i == j {
		return BandDiagonal
	}
	return BandOf(m.At(i, j))
}

// Bounds returns the half-open interval [lo, hi) covered by b.
func (b Band) Bounds() (lo, hi float64) {
	if b < 0 || b >= NumBands {
		return math.NaN(), math.NaN()
	}
	lo = lowerBounds[b]
	if b == NumBands-1 {
		return lo, 1
	}
	return lo, lowerBounds[b+1]
}

func (b Band) String() string {
	switch b {
	case BandDiagonal:
		return "diagonal"
	case BandUndefined:
		return "undefined"
	}
	lo, hi := b.Bounds()
	if math.IsNaN(lo) {
		return fmt.Sprintf("Band(%d)", int(b))
	}
	return fmt.Sprintf("[%.1f, %.1f)", lo, hi)
}

// TermStyle is a 16-colour ANSI foreground/background pair. An empty
// Background leaves the terminal background unchanged.
type TermStyle struct {
	Foreground string
	Background string
}

// ANSI 16-colour codes.
const (
	ansiBlack      = "0"
	ansiDarkRed    = "1"
	ansiDarkGreen  = "2"
	ansiDarkYellow = "3"
	ansiDarkBlue   = "4"
	ansiGray       = "7"
	ansiDarkGray   = "8"
	ansiRed        = "9"
	ansiGreen      = "10"
	ansiYellow     = "11"
	ansiBlue       = "12"
)

var termStyles = [NumBands]TermStyle{
	{Foreground: ansiRed},
	{Foreground: ansiYellow},
	{Foreground: ansiGreen},
	{Foreground: ansiBlue},
	{Foreground: ansiGray},
	{Foreground: ansiGray, Background: ansiBlack},
	{Foreground: ansiBlue, Background: ansiDarkBlue},
	{Foreground: ansiGreen, Background: ansiDarkGreen},
	{Foreground: ansiYellow, Background: ansiDarkYellow},
	{Foreground: ansiRed, Background: ansiDarkRed},
}

var diagonalTermStyle = TermStyle{Foreground: ansiGray, Background: ansiDarkGray}

// Term returns the terminal colours of b.
func (b Band) Term() TermStyle {
	if b < 0 || b >= NumBands {
		return diagonalTermStyle
	}
	return termStyles[b]
}

// Palette colours: strong negative correlation in cool colours, strong
// positive in warm colours, near zero in grey. Index NumBands is the diagonal.
var paletteColors = [NumBands + 1]color.RGBA{
	{R: 0x08, G: 0x30, B: 0x6b, A: 0xff},
	{R: 0x21, G: 0x71, B: 0xb5, A: 0xff},
	{R: 0x6b, G: 0xae, B: 0xd6, A: 0xff},
	{R: 0xc6, G: 0xdb, B: 0xef, A: 0xff},
	{R: 0xe5, G: 0xe5, B: 0xe5, A: 0xff},
	{R: 0xf2, G: 0xf2, B: 0xf2, A: 0xff},
	{R: 0xfc, G: 0xd5, B: 0xb5, A: 0xff},
	{R: 0xfc, G: 0x92, B: 0x72, A: 0xff},
	{R: 0xef, G: 0x3b, B: 0x2c, A: 0xff},
	{R: 0x99, G: 0x00, B: 0x0d, A: 0xff},
	{R: 0x59, G: 0x59, B: 0x59, A: 0xff},
}

// RGBA returns the heatmap colour of b.
func (b Band) RGBA() color.RGBA {
	if b < 0 || b >= NumBands {
		return paletteColors[NumBands]
	}
	return paletteColors[b]
}
