// Package render writes the threat report page consumed by static hosting.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"threatfeed/internal/domain"
	"threatfeed/internal/ports"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{ .Title }}</title>
    <style>
        body { background-color: #0d1117; color: #c9d1d9; font-family: 'Courier New', monospace; padding: 20px; }
        .container { max-width: 800px; margin: 0 auto; }
        h1 { color: #00ff41; text-shadow: 0 0 5px #00ff41; border-bottom: 1px solid #30363d; padding-bottom: 10px; }
        .card { background: #161b22; border: 1px solid #30363d; margin-bottom: 20px; padding: 15px; border-radius: 6px; }
        .card:hover { border-color: #00ff41; }
        .meta { color: #8b949e; font-size: 0.8em; margin-bottom: 10px; display: block; }
        .badge { background: #238636; color: white; padding: 2px 5px; border-radius: 4px; font-size: 0.7em; }
        .badge.risk { background: #da3633; }
        .badge.cat { background: #1f6feb; }
        a { color: #58a6ff; text-decoration: none; font-weight: bold; font-size: 1.1em; }
        .summary { margin-top: 10px; line-height: 1.5; color: #e6edf3; }
        .footer { text-align: center; margin-top: 40px; color: #484f58; font-size: 0.8em; }
    </style>
</head>
<body>
    <div class="container">
        <h1>/// DAILY_THREAT_INTEL_FEED</h1>
        <p style="color: #8b949e;">LAST_UPDATE: {{ .LastUpdated }} | SYSTEM: ONLINE</p>

        {{ range .Items }}
        <div class="card">
            <span class="meta"><span class="badge">{{ .Source }}</span> <span class="badge cat">{{ .Category }}</span>{{ if .IsZeroDay }} <span class="badge risk">HIGH RISK</span>{{ end }} {{ .Date }}</span>
            <a href="{{ .Link }}" target="_blank">&gt; {{ .Title }}</a>
            <div class="summary">{{ .Summary }}</div>
        </div>
        {{ end }}

        <div class="footer">Generated automatically</div>
    </div>
</body>
</html>
`

// HTMLRenderer writes the archive as a static report page.
type HTMLRenderer struct {
	path     string
	title    string
	template *template.Template
}

var _ ports.Renderer = (*HTMLRenderer)(nil)

// NewHTMLRenderer parses the embedded page template once.
func NewHTMLRenderer(path, title string) (*HTMLRenderer, error) {
	tmpl, err := template.New("report").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	if title == "" {
		title = "Cyber Threat Intel"
	}
	return &HTMLRenderer{path: path, title: title, template: tmpl}, nil
}

// Render writes the report for the given archive, newest first. The file is
// replaced via temp + rename so readers never see a half-written page.
func (r *HTMLRenderer) Render(items []domain.Article, generatedAt time.Time) error {
	var buf bytes.Buffer
	err := r.template.Execute(&buf, map[string]any{
		"Title":       r.title,
		"LastUpdated": generatedAt.UTC().Format("2006-01-02 15:04 UTC"),
		"Items":       items,
	})
	if err != nil {
		return fmt.Errorf("execute report template: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp report: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace report: %w", err)
	}

	return nil
}
