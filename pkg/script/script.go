// Package script turns a lock file into the final shell script.
package script

import (
	"strings"

	"github.com/plugman-sh/plugman/pkg/errors"
	"github.com/plugman-sh/plugman/pkg/lock"
	"github.com/plugman-sh/plugman/pkg/template"
)

// Generate renders the shell script for a lock file: each plugin in
// order, each of its apply templates in order. Inline plugins emit
// their raw text verbatim. Generation is pure; identical lock files
// yield identical scripts.
func Generate(lf *lock.File) (string, error) {
	templates, err := template.CompileTable(lf.Templates)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := range lf.Plugins {
		p := &lf.Plugins[i]

		if p.Inline() {
			writeChunk(&b, p.Raw)
			continue
		}

		vars := template.Vars{
			"name":  p.Name,
			"dir":   p.SourceDir,
			"files": p.Files,
		}
		for _, name := range p.Apply {
			tpl, ok := templates[name]
			if !ok {
				return "", errors.Newf(errors.ErrTemplateNotFound, "plugin %q applies undefined template %q", p.Name, name)
			}
			out, err := tpl.Render(vars)
			if err != nil {
				return "", errors.Wrapf(err, errors.ErrTemplateRender, "failed to render template %q for plugin %q", name, p.Name)
			}
			writeChunk(&b, out)
		}
	}
	return b.String(), nil
}

// writeChunk appends a rendered unit, newline-terminated
func writeChunk(b *strings.Builder, s string) {
	b.WriteString(s)
	if !strings.HasSuffix(s, "\n") {
		b.WriteString("\n")
	}
}
