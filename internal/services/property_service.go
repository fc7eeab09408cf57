package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"modeldoc/internal/models"
	"modeldoc/internal/php"
	"modeldoc/internal/phpdoc"
	"modeldoc/internal/repositories"
	"modeldoc/internal/utils"
)

// PropertyService keeps the @property tags of a model's doc comment in sync
// with the columns of its table.
type PropertyService struct {
	fs       afero.Fs
	schema   repositories.SchemaRepository
	resolver *TypeResolver
	prefix   string
	root     string

	// DryRun writes rendered doc comments to this writer instead of the
	// model files.
	DryRun io.Writer
}

func NewPropertyService(
	fs afero.Fs,
	schema repositories.SchemaRepository,
	resolver *TypeResolver,
	modelsDir string,
	markerPrefix string,
) *PropertyService {
	return &PropertyService{
		fs:       fs,
		schema:   schema,
		resolver: resolver,
		prefix:   markerPrefix,
		root:     modelsDir,
	}
}

// Sync regenerates the property tags of model and rewrites its file.
func (s *PropertyService) Sync(ctx context.Context, model *models.Model) error {
	columns, err := s.schema.ListColumns(ctx, model.Table)
	if err != nil {
		return fmt.Errorf("model %s: %w", model.FQCN, err)
	}

	file := filepath.Join(s.root, filepath.FromSlash(model.Path))
	if s.DryRun != nil {
		content, err := afero.ReadFile(s.fs, file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		class, err := locateClass(content, model.FQCN)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		rendered, err := s.Render(columns, model, docText(class))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(s.DryRun, "// %s\n%s\n\n", file, rendered)
		return err
	}

	return utils.ApplyPatch(s.fs, file, func(content []byte) ([]byte, error) {
		class, err := locateClass(content, model.FQCN)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		rendered, err := s.Render(columns, model, docText(class))
		if err != nil {
			return nil, err
		}
		return Splice(content, class, rendered), nil
	})
}

// Render parses existing (or the empty placeholder when existing is empty),
// drops stale generated tags, prepends one tag per column and prints the
// result.
func (s *PropertyService) Render(columns []models.Column, model *models.Model, existing string) (string, error) {
	if existing == "" {
		existing = phpdoc.Empty
	}
	block, err := phpdoc.Parse(existing)
	if err != nil {
		return "", fmt.Errorf("model %s: %w", model.FQCN, err)
	}

	names := models.ColumnNames(columns)
	block.Filter(func(node phpdoc.Node) bool {
		return !s.isGenerated(node, names)
	})

	generated := make([]phpdoc.Node, 0, len(columns))
	for _, col := range columns {
		typ, err := s.resolver.Resolve(col, model)
		if err != nil {
			return "", err
		}
		generated = append(generated, phpdoc.NewProperty(typ, col.Name, s.describe(col)))
	}
	block.Prepend(generated...)

	return phpdoc.Print(block), nil
}

// isGenerated reports whether node is a property tag for a current column or
// one carrying the marker prefix.
func (s *PropertyService) isGenerated(node phpdoc.Node, columns []string) bool {
	tag, ok := node.(*phpdoc.TagNode)
	if !ok {
		return false
	}
	prop, ok := tag.Property()
	if !ok {
		return false
	}
	return utils.Contains(columns, prop.PropertyName()) || strings.HasPrefix(prop.Description, s.prefix)
}

func (s *PropertyService) describe(col models.Column) string {
	description := s.prefix + col.Name
	if col.HasComment() {
		// A doc tag lives on one line.
		description += ", " + strings.Join(strings.Fields(*col.Comment), " ")
	}
	return description
}

func locateClass(content []byte, fqcn string) (*php.Class, error) {
	file, err := php.ParseFile(content)
	if err != nil {
		return nil, err
	}
	for _, class := range file.Classes {
		if class.FQCN() == fqcn {
			return class, nil
		}
	}
	return nil, fmt.Errorf("class %s not found", fqcn)
}

func docText(class *php.Class) string {
	if class.Doc == nil {
		return ""
	}
	return class.Doc.Text
}

// Splice puts rendered into content: over the class's doc comment when it
// has one, otherwise right before the declaration.
func Splice(content []byte, class *php.Class, rendered string) []byte {
	eol := "\n"
	if bytes.Contains(content, []byte("\r\n")) {
		eol = "\r\n"
		rendered = strings.ReplaceAll(rendered, "\n", eol)
	}

	start, end := 0, 0
	if class.Doc != nil {
		start, end = class.Doc.Start, class.Doc.End
	} else {
		start = insertOffset(content, class.StartOffset)
		end = start
		rendered += eol
	}

	var out bytes.Buffer
	out.Grow(len(content) - (end - start) + len(rendered))
	out.Write(content[:start])
	out.WriteString(rendered)
	out.Write(content[end:])
	return out.Bytes()
}

// insertOffset moves offset back to the start of its line when only blanks
// precede it there. Code sharing the line, like an open tag, stays in front.
func insertOffset(content []byte, offset int) int {
	lineStart := bytes.LastIndexByte(content[:offset], '\n') + 1
	if len(bytes.TrimLeft(content[lineStart:offset], " \t")) == 0 {
		return lineStart
	}
	return offset
}
