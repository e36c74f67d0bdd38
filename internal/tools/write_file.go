package tools

import (
	"context"
	"fmt"

	"github.com/agentdesk/agentdesk/internal/report"
)

const WriteFileName = "WriteFile"

// ReportWriter is satisfied by *report.Writer
type ReportWriter interface {
	Write(ctx context.Context, content string) (*report.Result, error)
}

// WriteFile saves the research answer as a Markdown report and its PDF
func WriteFile(w ReportWriter) Tool {
	return Tool{
		Name:        WriteFileName,
		Description: "Writes research to Markdown, converts to PDF, and opens it. Input is the full final answer text.",
		Invoke: func(ctx context.Context, input string) (string, error) {
			res, err := w.Write(ctx, input)
			if err != nil {
				return "", err
			}
			if res.Status == report.StatusPartial {
				return fmt.Sprintf("⚠️ Partially saved. %s", res.Message), nil
			}
			return fmt.Sprintf("✅ %s", res.Message), nil
		},
	}
}
