package report_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/agentdesk/agentdesk/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverter struct {
	err    error
	called bool
}

func (f *fakeConverter) Convert(_ context.Context, _ []byte, pdfPath string) error {
	f.called = true
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644)
}

type failingOpener struct{}

func (failingOpener) Open(string) error { return errors.New("no display") }

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)
}

func TestWriteComplete(t *testing.T) {
	dir := t.TempDir()
	conv := &fakeConverter{}
	w := report.NewWriter(dir, "research_output", report.WithConverter(conv), report.WithClock(fixedClock))

	res, err := w.Write(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, report.StatusComplete, res.Status)
	assert.Equal(t, filepath.Join(dir, "research_output_20250314_0926.md"), res.MarkdownPath)
	assert.Equal(t, filepath.Join(dir, "research_output_20250314_0926.pdf"), res.PDFPath)
	assert.True(t, conv.called)

	data, err := os.ReadFile(res.MarkdownPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "# 🔍 Research Summary")
	assert.Contains(t, string(data), "## 🧠 Answer:")
	assert.FileExists(t, res.PDFPath)
}

func TestWritePartialOnConversionFailure(t *testing.T) {
	dir := t.TempDir()
	conv := &fakeConverter{err: errors.New("wkhtmltopdf: not found")}
	w := report.NewWriter(dir, "r", report.WithConverter(conv), report.WithClock(fixedClock))

	res, err := w.Write(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, report.StatusPartial, res.Status)
	assert.Empty(t, res.PDFPath)
	assert.FileExists(t, res.MarkdownPath)
	assert.Contains(t, res.Message, res.MarkdownPath)
	assert.Contains(t, res.Message, "wkhtmltopdf: not found")
}

func TestWriteConversionDisabled(t *testing.T) {
	w := report.NewWriter(t.TempDir(), "r", report.WithClock(fixedClock))

	res, err := w.Write(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, report.StatusPartial, res.Status)
	assert.Contains(t, res.Message, models.ErrConversionDisabled.Error())
}

func TestWriteOpenFailureKeepsStatus(t *testing.T) {
	w := report.NewWriter(t.TempDir(), "r",
		report.WithConverter(&fakeConverter{}),
		report.WithOpener(failingOpener{}),
		report.WithClock(fixedClock))

	res, err := w.Write(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, report.StatusComplete, res.Status)
	assert.Contains(t, res.Message, "could not open")
}

func TestWriteMarkdownFailure(t *testing.T) {
	// a regular file where the output directory should be
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	w := report.NewWriter(blocker, "r", report.WithClock(fixedClock))
	res, err := w.Write(context.Background(), "hello")
	require.Error(t, err)
	assert.Nil(t, res)

	var reportErr *models.ReportError
	require.True(t, errors.As(err, &reportErr))
	assert.Equal(t, models.ReportErrorMarkdown, reportErr.Kind)
}

func TestSameMinuteOverwrites(t *testing.T) {
	w := report.NewWriter(t.TempDir(), "r", report.WithClock(fixedClock))

	first, err := w.Write(context.Background(), "first")
	require.NoError(t, err)
	second, err := w.Write(context.Background(), "second")
	require.NoError(t, err)

	assert.Equal(t, first.MarkdownPath, second.MarkdownPath)
	data, err := os.ReadFile(second.MarkdownPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "second")
	assert.NotContains(t, string(data), "first")
}

func TestRenderHTML(t *testing.T) {
	page, err := report.RenderHTML([]byte("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h1>Title</h1>")
	assert.Contains(t, string(page), "<table>")
	assert.Contains(t, string(page), `charset="utf-8"`)
}
