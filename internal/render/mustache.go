// Package render renders README metrics into a Mustache template.
package render

import (
	"fmt"
	"os"

	"github.com/cbroglie/mustache"
	"github.com/google/renameio/v2"
	"github.com/naka-gawa/readme-stats/internal/domain"
)

const outputPerm os.FileMode = 0o644

// Renderer substitutes metrics into the template at TemplatePath and writes
// the result to OutputPath.
type Renderer struct {
	templatePath string
	outputPath   string
}

// NewRenderer creates a new Renderer.
func NewRenderer(templatePath, outputPath string) *Renderer {
	return &Renderer{
		templatePath: templatePath,
		outputPath:   outputPath,
	}
}

// Render overwrites the output file only when rendering succeeded; on any
// error the previous output is left untouched.
func (r *Renderer) Render(metrics domain.ReadmeMetrics) error {
	tmpl, err := os.ReadFile(r.templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	output, err := mustache.Render(string(tmpl), metrics.TemplateData())
	if err != nil {
		return fmt.Errorf("failed to render template %s: %w", r.templatePath, err)
	}
	if err := renameio.WriteFile(r.outputPath, []byte(output), outputPerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.outputPath, err)
	}
	return nil
}
