package report

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: sans-serif; max-width: 48em; margin: 2em auto; line-height: 1.5; }
pre, code { background: #f4f4f4; }
</style>
</head>
<body>
%s</body>
</html>
`

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts Markdown to a standalone UTF-8 HTML page
func RenderHTML(src []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return []byte(fmt.Sprintf(htmlShell, body.String())), nil
}

// Wkhtmltopdf converts through the wkhtmltopdf binary, feeding the rendered
// HTML on stdin.
type Wkhtmltopdf struct {
	Binary string
}

// NewWkhtmltopdf creates a converter; an empty binary means "wkhtmltopdf" on PATH
func NewWkhtmltopdf(binary string) *Wkhtmltopdf {
	if binary == "" {
		binary = "wkhtmltopdf"
	}
	return &Wkhtmltopdf{Binary: binary}
}

func (c *Wkhtmltopdf) Convert(ctx context.Context, src []byte, pdfPath string) error {
	page, err := RenderHTML(src)
	if err != nil {
		return &models.ReportError{Kind: models.ReportErrorConvert, Message: "render html", Err: err}
	}

	cmd := exec.CommandContext(ctx, c.Binary, "--quiet", "--encoding", "utf-8", "-", pdfPath)
	cmd.Stdin = bytes.NewReader(page)
	if out, err := cmd.CombinedOutput(); err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = c.Binary
		}
		return &models.ReportError{Kind: models.ReportErrorConvert, Message: msg, Err: err}
	}
	return nil
}
