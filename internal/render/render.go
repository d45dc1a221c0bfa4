// Package render turns tailored-resume data into a delivered artifact file.
// The rendering backend is an opaque capability behind a single interface.
package render

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

// Renderer renders arbitrary template data to an output file.
type Renderer interface {
	Render(data any, outPath string) error
}

// HTMLRenderer renders through an HTML template on disk.
type HTMLRenderer struct {
	TemplatePath string
}

// NewHTMLRenderer returns a renderer for the given template file.
func NewHTMLRenderer(templatePath string) *HTMLRenderer {
	return &HTMLRenderer{TemplatePath: templatePath}
}

// Render executes the template with data and writes the result to outPath,
// creating parent directories as needed. The template is re-parsed per call
// so edits take effect without a restart.
func (r *HTMLRenderer) Render(data any, outPath string) error {
	tmpl, err := template.ParseFiles(r.TemplatePath)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", r.TemplatePath, err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("render %s: %w", outPath, err)
	}
	return nil
}
