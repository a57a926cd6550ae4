// Package report prints diagnostics results as fixed-width console tables.
//
// Column layouts are stable so the output can be diffed between runs.
// Colour is applied with lipgloss and is dropped automatically when the
// writer is not a terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/YuminosukeSato/modeldiag/correlation"
	"github.com/YuminosukeSato/modeldiag/crossval"
	"github.com/YuminosukeSato/modeldiag/importance"
	"github.com/YuminosukeSato/modeldiag/metrics"
)

// Rule separates report sections.
var Rule = strings.Repeat("-", 82)

const (
	colorText  = lipgloss.Color("11")
	colorAlert = lipgloss.Color("9")
)

// Printer writes report sections to w. The first write error is kept and
// returned by every later call.
type Printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	text     lipgloss.Style
	alert    lipgloss.Style
	err      error
}

// Option configures a Printer.
type Option func(*Printer)

// WithColor forces ANSI colour output even when w is not a terminal.
func WithColor() Option {
	return func(p *Printer) {
		p.renderer.SetColorProfile(termenv.ANSI)
	}
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, opts ...Option) *Printer {
	p := &Printer{w: w, renderer: lipgloss.NewRenderer(w)}
	for _, opt := range opts {
		opt(p)
	}
	p.text = p.renderer.NewStyle().Foreground(colorText)
	p.alert = p.renderer.NewStyle().Foreground(colorAlert)
	return p
}

// Err returns the first write error.
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *Printer) line(style lipgloss.Style, format string, args ...any) {
	p.write(style.Render(fmt.Sprintf(format, args...)) + "\n")
}

// Title prints a section heading between rules.
func (p *Printer) Title(format string, args ...any) error {
	p.line(p.text, "%s", Rule)
	p.line(p.text, " "+format, args...)
	p.line(p.text, "%s", Rule)
	return p.err
}

// CrossValidation prints the fold summaries as an Avg/StdDev/CI table.
func (p *Printer) CrossValidation(summaries []crossval.FoldSummary) error {
	p.line(p.text, "%s", Rule)
	p.line(p.text, " Cross validation metrics (against all dataset)")
	p.line(p.text, "       %18s %18s %18s %18s", "", "Avg", "StdDev", "ConfInterval(95%)")
	for _, s := range summaries {
		p.line(p.text, "       %18s %18.3f %18.3f %18.3f", s.Metric, s.Mean, s.StdDev, s.CI95)
	}
	p.line(p.text, "%s", Rule)
	return p.err
}

// Multiclass prints a single evaluation, optionally with its confusion matrix.
func (p *Printer) Multiclass(m metrics.MulticlassMetrics, confusion bool) error {
	p.line(p.text, "%s", Rule)
	p.line(p.text, "       %18s %18s %18s %18s",
		metrics.MetricMicroAccuracy, metrics.MetricMacroAccuracy, metrics.MetricLogLoss, metrics.MetricLogLossReduction)
	p.line(p.text, "       %18.3f %18.3f %18.3f %18.3f", m.MicroAccuracy, m.MacroAccuracy, m.LogLoss, m.LogLossReduction)

	if confusion && m.ConfusionMatrix != nil {
		p.line(p.text, "%s", Rule)
		k, _ := m.ConfusionMatrix.Dims()
		var b strings.Builder
		fmt.Fprintf(&b, "%12s", "")
		for j := 0; j < k; j++ {
			fmt.Fprintf(&b, "%9s", fmt.Sprintf("pred %d", j))
		}
		p.line(p.text, "%s", b.String())
		for i := 0; i < k; i++ {
			b.Reset()
			fmt.Fprintf(&b, "%12s", fmt.Sprintf("true %d", i))
			for j := 0; j < k; j++ {
				fmt.Fprintf(&b, "%9.0f", m.ConfusionMatrix.At(i, j))
			}
			p.line(p.text, "%s", b.String())
		}
	}
	p.line(p.text, "%s", Rule)
	return p.err
}

// Importance prints ranked permutation importance. Removal candidates are
// printed in red with five decimals and a marker; the rest use four.
func (p *Printer) Importance(ranked []importance.Aggregated, threshold float64) error {
	p.line(p.text, " PFI (by MicroAccuracy), threshold: %v", threshold)
	p.line(p.text, "%s", Rule)
	p.line(p.text, "  %4s %-15s %15s %15s", "No", "Feature", "MicroAccuracy", "95% Mean")
	for _, a := range ranked {
		if a.RemovalCandidate {
			p.line(p.alert, "  %3d. %-15s %15.5f %15.5f (candidate for deletion!)", a.Rank, a.Feature, a.Mean, a.Interval)
			continue
		}
		p.line(p.text, "  %3d. %-15s %15.4f %15.4f", a.Rank, a.Feature, a.Mean, a.Interval)
	}
	p.line(p.text, "%s", Rule)
	return p.err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func (p *Printer) bandStyle(b correlation.Band) lipgloss.Style {
	ts := b.Term()
	st := p.renderer.NewStyle().Foreground(lipgloss.Color(ts.Foreground))
	if ts.Background != "" {
		st = st.Background(lipgloss.Color(ts.Background))
	}
	return st
}

// Correlation prints the correlation matrix with each cell coloured by band.
// Column names are cut to 9 characters and row names to 12.
func (p *Printer) Correlation(res *correlation.Result, legend bool) error {
	m := res.Matrix
	n := m.Size()

	p.line(p.text, " Correlation Matrix, threshold: %v", res.Threshold)
	p.line(p.text, "%s", Rule)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", 12))
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%9s", truncate(m.Name(i), 9))
	}
	p.write(b.String() + "\n")

	for i := 0; i < n; i++ {
		b.Reset()
		fmt.Fprintf(&b, "%12s", truncate(m.Name(i), 12))
		for j := 0; j < n; j++ {
			b.WriteString(p.bandStyle(correlation.Classify(m, i, j)).Render(fmt.Sprintf("%9.4f", m.At(i, j))))
		}
		p.write(b.String() + "\n")
	}
	p.line(p.text, "%s", Rule)

	if legend {
		p.line(p.text, "  Legend:")
		for k := correlation.Band(0); k < correlation.NumBands; k++ {
			lo, hi := k.Bounds()
			p.write(" " + p.bandStyle(k).Render("███████") + fmt.Sprintf(" %4.1f : %4.1f\n", lo, hi))
		}
		p.write(" " + p.bandStyle(correlation.BandDiagonal).Render("███████") + " self\n")
		p.line(p.text, "%s", Rule)
	}
	return p.err
}

// CorrelatedPairs prints the flagged pairs of res in red.
func (p *Printer) CorrelatedPairs(res *correlation.Result) error {
	p.line(p.text, "  We can remove one of the next high correlated features!")
	p.line(p.text, "    - closer to  0 => low correlated features")
	p.line(p.text, "    - closer to  1 => direct high correlated features")
	p.line(p.text, "    - closer to -1 => inverted high correlated features")
	p.line(p.text, "%s", Rule)
	p.line(p.text, "  %4s %-15s vs. %-15s %15s", "No", "Feature", "Feature", "Rate")
	for k, pair := range res.Pairs {
		p.line(p.alert, "  %3d. %-15s vs. %-15s %15.4f", k+1, pair.FeatureI, pair.FeatureJ, pair.Correlation)
	}
	p.line(p.text, "%s", Rule)
	return p.err
}

// Failure prints an analyzer failure in red.
func (p *Printer) Failure(analyzer string, err error) error {
	p.line(p.alert, " %s failed: %v", analyzer, err)
	return p.err
}

// CrossValidation writes summaries to w.
func CrossValidation(w io.Writer, summaries []crossval.FoldSummary) error {
	return NewPrinter(w).CrossValidation(summaries)
}

// Importance writes the ranked importance table to w.
func Importance(w io.Writer, ranked []importance.Aggregated, threshold float64) error {
	return NewPrinter(w).Importance(ranked, threshold)
}

// Correlation writes the correlation matrix followed by the flagged pairs.
func Correlation(w io.Writer, res *correlation.Result, legend bool) error {
	p := NewPrinter(w)
	if err := p.Correlation(res, legend); err != nil {
		return err
	}
	return p.CorrelatedPairs(res)
}
