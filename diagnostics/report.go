package diagnostics

import (
	"io"

	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/modeldiag/correlation"
	"github.com/YuminosukeSato/modeldiag/crossval"
	"github.com/YuminosukeSato/modeldiag/importance"
	"github.com/YuminosukeSato/modeldiag/pkg/errors"
	"github.com/YuminosukeSato/modeldiag/report"
)

// Report collects the results of one Suite.Run. A field is nil when its
// analyzer was skipped or failed.
type Report struct {
	CrossValidation     []crossval.FoldSummary
	Importance          []importance.Aggregated
	ImportanceThreshold float64
	Correlation         *correlation.Result
	// Errors maps analyzer names to their failure.
	Errors map[string]error
}

func (r *Report) merge(part *Report) {
	if part.CrossValidation != nil {
		r.CrossValidation = part.CrossValidation
	}
	if part.Importance != nil {
		r.Importance = part.Importance
		r.ImportanceThreshold = part.ImportanceThreshold
	}
	if part.Correlation != nil {
		r.Correlation = part.Correlation
	}
}

// RenderOption configures Render.
type RenderOption func(*renderConfig)

type renderConfig struct {
	legend  bool
	printer []report.Option
}

// WithLegend adds the band legend under the correlation matrix.
func WithLegend() RenderOption {
	return func(c *renderConfig) {
		c.legend = true
	}
}

// WithPrinterOptions passes options to the report printer.
func WithPrinterOptions(opts ...report.Option) RenderOption {
	return func(c *renderConfig) {
		c.printer = append(c.printer, opts...)
	}
}

// Render writes the available sections in order: cross-validation,
// permutation importance, correlation, and finally failed analyzers.
func (r *Report) Render(w io.Writer, opts ...RenderOption) error {
	var cfg renderConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	p := report.NewPrinter(w, cfg.printer...)
	if r.CrossValidation != nil {
		if err := p.CrossValidation(r.CrossValidation); err != nil {
			return err
		}
	}
	if r.Importance != nil {
		p.Title("PFI (permutation feature importance)")
		if err := p.Importance(r.Importance, r.ImportanceThreshold); err != nil {
			return err
		}
	}
	if r.Correlation != nil {
		p.Title("CORRELATION MATRIX")
		if err := p.Correlation(r.Correlation, cfg.legend); err != nil {
			return err
		}
		if err := p.CorrelatedPairs(r.Correlation); err != nil {
			return err
		}
	}
	for _, name := range r.Failed() {
		p.Failure(name, r.Errors[name])
	}
	return p.Err()
}

// Heatmap renders the correlation heatmap. It fails with ErrMalformedInput
// when the correlation analyzer did not produce a result.
func (r *Report) Heatmap(w io.Writer, format string, width, height vg.Length) error {
	if r.Correlation == nil {
		return errors.NewMalformedInputError("diagnostics.Heatmap", "report has no correlation result", nil)
	}
	return correlation.Heatmap(w, r.Correlation, format, width, height)
}
