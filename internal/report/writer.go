// Package report turns a research answer into a timestamped Markdown file,
// converts it to PDF and opens it for the user.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/rs/zerolog"
)

// Status of a write that did not fail outright
type Status string

const (
	StatusComplete Status = "complete"
	StatusPartial  Status = "partial"
)

// timestampLayout has minute granularity; two reports in the same minute
// share a name and the later one overwrites the earlier.
const timestampLayout = "20060102_1504"

const reportTemplate = `# 🔍 Research Summary

## 🧠 Answer:
%s

---

_Generated by the agentdesk research agent with web search._
`

// Result describes what a Write produced. PDFPath is empty when conversion
// did not happen.
type Result struct {
	MarkdownPath string
	PDFPath      string
	Status       Status
	Message      string
}

// Converter renders a Markdown document into a PDF at pdfPath
type Converter interface {
	Convert(ctx context.Context, markdown []byte, pdfPath string) error
}

// Opener shows a finished file to the user
type Opener interface {
	Open(path string) error
}

// Writer writes research reports into a single output directory
type Writer struct {
	dir       string
	basename  string
	converter Converter
	opener    Opener
	now       func() time.Time
}

// Option configures a Writer
type Option func(*Writer)

// WithConverter sets the PDF converter. A nil converter disables PDF output.
func WithConverter(c Converter) Option {
	return func(w *Writer) { w.converter = c }
}

// WithOpener sets how finished reports are shown
func WithOpener(o Opener) Option {
	return func(w *Writer) { w.opener = o }
}

// WithClock overrides time.Now for file naming
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// NewWriter creates a Writer for <dir>/<basename>_<timestamp>.md with
// PDF conversion off and a no-op opener unless options say otherwise.
func NewWriter(dir, basename string, opts ...Option) *Writer {
	w := &Writer{
		dir:      dir,
		basename: basename,
		opener:   NoopOpener{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Paths returns the Markdown and PDF paths a write at t would use
func (w *Writer) Paths(t time.Time) (string, string) {
	stem := fmt.Sprintf("%s_%s", w.basename, t.Format(timestampLayout))
	return filepath.Join(w.dir, stem+".md"), filepath.Join(w.dir, stem+".pdf")
}

// Write persists content as a report. A Markdown failure is returned as a
// *models.ReportError; conversion and open failures degrade the Result.
func (w *Writer) Write(ctx context.Context, content string) (*Result, error) {
	mdPath, pdfPath := w.Paths(w.now())
	doc := []byte(fmt.Sprintf(reportTemplate, content))

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, &models.ReportError{Kind: models.ReportErrorMarkdown, Message: "create report directory " + w.dir, Err: err}
	}
	if err := os.WriteFile(mdPath, doc, 0o644); err != nil {
		return nil, &models.ReportError{Kind: models.ReportErrorMarkdown, Message: "write " + mdPath, Err: err}
	}

	result := &Result{MarkdownPath: mdPath, Status: StatusComplete}

	convErr := models.ErrConversionDisabled
	if w.converter != nil {
		convErr = w.converter.Convert(ctx, doc, pdfPath)
	}
	if convErr != nil {
		result.Status = StatusPartial
		result.Message = fmt.Sprintf("Markdown created: %s; PDF not created: %v", mdPath, convErr)
		if !errors.Is(convErr, models.ErrConversionDisabled) {
			zerolog.Ctx(ctx).Warn().Err(convErr).Str("markdown", mdPath).Msg("report conversion failed")
		}
	} else {
		result.PDFPath = pdfPath
		result.Message = fmt.Sprintf("Markdown and PDF created: %s, %s", mdPath, pdfPath)
	}

	// non-fatal, the files were still created
	if err := w.opener.Open(mdPath); err != nil {
		openErr := &models.ReportError{Kind: models.ReportErrorOpen, Message: "open " + mdPath, Err: err}
		zerolog.Ctx(ctx).Warn().Err(openErr).Msg("could not open report")
		result.Message += " (could not open viewer)"
	}

	zerolog.Ctx(ctx).Info().
		Str("markdown", result.MarkdownPath).
		Str("pdf", result.PDFPath).
		Str("status", string(result.Status)).
		Msg("report written")

	return result, nil
}
