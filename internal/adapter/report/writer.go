package report

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/case-growth-etl/internal/domain"
)

//go:embed templates/index.html.tmpl
var templates embed.FS

const columns = 2

var pageTmpl = template.Must(template.New("index.html.tmpl").Funcs(template.FuncMap{
	"doubling": doubling,
}).ParseFS(templates, "templates/index.html.tmpl"))

// Writer emits index.html and report.json into the output directory.
// It implements pipeline.ReportWriter.
type Writer struct {
	outDir string
	logger *slog.Logger
}

// NewWriter creates a report writer for outDir.
func NewWriter(outDir string, logger *slog.Logger) *Writer {
	return &Writer{outDir: outDir, logger: logger}
}

type page struct {
	Report  domain.Report
	Rows    [][]domain.ReportEntry
	Version int64
}

// Write renders the ranked report. Both files are replaced atomically.
func (w *Writer) Write(ctx context.Context, r domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data := page{Report: r, Rows: chunk(r.Entries, columns), Version: r.GeneratedAt.Unix()}
	if err := writeFile(filepath.Join(w.outDir, "index.html"), func(f *os.File) error {
		return pageTmpl.Execute(f, data)
	}); err != nil {
		return fmt.Errorf("write index.html: %w", err)
	}

	if err := writeFile(filepath.Join(w.outDir, "report.json"), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}); err != nil {
		return fmt.Errorf("write report.json: %w", err)
	}

	w.logger.Info("report written", "dir", w.outDir, "regions", len(r.Entries))
	return nil
}

// Load reads back the report.json left by a previous Write.
func (w *Writer) Load() (domain.Report, error) {
	data, err := os.ReadFile(filepath.Join(w.outDir, "report.json"))
	if err != nil {
		return domain.Report{}, err
	}
	var r domain.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.Report{}, fmt.Errorf("decode report.json: %w", err)
	}
	return r, nil
}

func writeFile(path string, fill func(*os.File) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func chunk(entries []domain.ReportEntry, n int) [][]domain.ReportEntry {
	var rows [][]domain.ReportEntry
	for len(entries) > n {
		rows = append(rows, entries[:n])
		entries = entries[n:]
	}
	if len(entries) > 0 {
		rows = append(rows, entries)
	}
	return rows
}

func doubling(fit *domain.Fit) string {
	if fit == nil {
		return ""
	}
	if !fit.Growing {
		return "not growing"
	}
	return fmt.Sprintf("doubling every %.1f days", fit.DoublingDays)
}
