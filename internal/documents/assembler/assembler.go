// Package assembler turns agreement form values into Word documents, either
// from a structured template or from a pre-authored .docx with {tag} placeholders.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/unicoop/convenios-backend/internal/convenios/domain"
	"github.com/unicoop/convenios-backend/internal/platform/logger"
	"github.com/unicoop/convenios-backend/internal/platform/textnorm"
)

const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Strategy names which path produced an artifact.
const (
	StrategyObject = "object"
	StrategyBinary = "binary"
)

var ErrNoTemplate = errors.New("no template available for agreement type")

// TemplateSource lists and reads pre-authored .docx templates.
type TemplateSource interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
}

// DirSource serves templates from a directory.
type DirSource struct {
	Dir string
}

func (d DirSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		// skip Word lock files
		if e.IsDir() || strings.HasPrefix(name, "~$") || !strings.EqualFold(filepath.Ext(name), ".docx") {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (d DirSource) Read(ctx context.Context, name string) ([]byte, error) {
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid template name %q", name)
	}
	return os.ReadFile(filepath.Join(d.Dir, name))
}

// Artifact is a generated document. The assembler never stores it.
type Artifact struct {
	FileName    string
	ContentType string
	Strategy    string
	Template    string
	Content     []byte
}

type Assembler struct {
	templates TemplateSource
}

func New(templates TemplateSource) *Assembler {
	return &Assembler{templates: templates}
}

// Assemble renders t with fields. A .docx whose name matches the type name
// wins; otherwise the type's structured template is used.
func (a *Assembler) Assemble(ctx context.Context, t *domain.AgreementType, fields map[string]string) (*Artifact, error) {
	fileName := textnorm.Slugify(t.Name)
	if fileName == "" {
		fileName = "convenio"
	}
	fileName += ".docx"

	if a.templates != nil {
		names, err := a.templates.List(ctx)
		if err != nil {
			logger.New(ctx).Warnf("documents.assemble", "list templates error=%v", err)
		}
		if name, ok := Match(t.Name, names); ok {
			tmpl, err := a.templates.Read(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("read template %s: %w", name, err)
			}
			out, err := RenderBinary(tmpl, fields)
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", name, err)
			}
			return &Artifact{
				FileName:    fileName,
				ContentType: DocxContentType,
				Strategy:    StrategyBinary,
				Template:    name,
				Content:     out,
			}, nil
		}
	}

	if IsEmpty(t.Template) {
		return nil, fmt.Errorf("%w: %s", ErrNoTemplate, t.Name)
	}
	out, err := RenderObject(t.Template, fields)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		FileName:    fileName,
		ContentType: DocxContentType,
		Strategy:    StrategyObject,
		Content:     out,
	}, nil
}
