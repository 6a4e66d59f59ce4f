// Package report renders accepted search results as an HTML document.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/naka-gawa/github-search/internal/domain"
)

// filenameLayout renders the run date as e.g. 05Mar2024.
const filenameLayout = "02Jan2006"

// Items are emitted back to back so the list body stays byte-for-byte predictable.
var documentTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
</head>
<body>
    <ul>{{range .Results}}<li><a href="{{.URL}}">{{.FullName}}</a></li>{{end}}</ul>
</body>
</html>
`))

type document struct {
	Title   string
	Results []domain.AcceptedResult
}

// Filename returns the report file name for a run at t.
func Filename(t time.Time) string {
	return "GitHub_Search_Results_" + t.Format(filenameLayout) + ".html"
}

// Render writes the HTML document for results to w, keyword by keyword in insertion order.
func Render(w io.Writer, results *domain.ResultsByKeyword) error {
	doc := document{
		Title:   "GitHub Search Results",
		Results: results.All(),
	}
	if err := documentTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// Writer stores reports in a directory, one file per run date.
type Writer struct {
	dir    string
	now    func() time.Time
	logger *log.Logger
}

// NewWriter creates a Writer for dir. An empty dir means the working directory.
func NewWriter(dir string, logger *log.Logger) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{dir: dir, now: time.Now, logger: logger}
}

// Write renders results and writes them to a date-stamped file, returning its path.
// The document is rendered in memory first so a failed render leaves no file behind.
func (w *Writer) Write(results *domain.ResultsByKeyword) (string, error) {
	path := filepath.Join(w.dir, Filename(w.now()))
	w.logger.Infof("Writing search results to: %s", path)
	for _, k := range results.Keywords() {
		w.logger.Infof("Adding %d result(s) for keyword: %s", len(results.Get(k)), k)
	}

	var buf bytes.Buffer
	if err := Render(&buf, results); err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
