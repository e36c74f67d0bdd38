// Package handler serves the HTML form front ends
package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/agentdesk/agentdesk/internal/security"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const maxFormBytes = 64 << 10

func render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// readQuery parses the form and screens the query field. A non-empty message
// means the request must be rejected with 400.
func readQuery(w http.ResponseWriter, r *http.Request, guard *security.PromptValidator, audit *security.AuditLogger) (string, string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return "", "invalid form submission"
	}

	query := strings.TrimSpace(r.PostFormValue("query"))
	if query == "" {
		return "", "query is required"
	}
	if guard != nil {
		if v := guard.Validate(query); !v.Valid {
			if audit != nil {
				audit.LogRejected(r.Context(), query, v.Message, r.RemoteAddr)
			}
			return query, v.Message
		}
	}
	return query, ""
}
