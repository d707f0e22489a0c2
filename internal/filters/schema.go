// Package filters holds the option schemas and the hierarchical multi-select
// state used by the directory search pages.
package filters

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxDepth is the deepest path an option schema may define.
const MaxDepth = 4

//go:embed schemas.yaml
var embeddedSchemas []byte

// Option is one selectable label with its optional drill-down options.
type Option struct {
	Label    string   `yaml:"label" json:"label"`
	Children []Option `yaml:"children,omitempty" json:"children,omitempty"`
}

// Schema is the option tree for one filter key.
type Schema struct {
	Key     string   `yaml:"key" json:"key"`
	Options []Option `yaml:"options" json:"options"`
}

type schemaFile struct {
	Schemas []Schema `yaml:"schemas"`
}

// Validate checks labels are non-empty and unique per level and that the tree
// is at most MaxDepth deep.
func (s *Schema) Validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return errors.New("schema key is required")
	}
	if len(s.Options) == 0 {
		return fmt.Errorf("schema %q: no options", s.Key)
	}
	return validateLevel(s.Key, s.Options, 1)
}

func validateLevel(key string, options []Option, depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("schema %q: nesting deeper than %d levels", key, MaxDepth)
	}
	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		label := strings.TrimSpace(opt.Label)
		if label == "" {
			return fmt.Errorf("schema %q: empty label at depth %d", key, depth)
		}
		if label != opt.Label {
			return fmt.Errorf("schema %q: label %q has surrounding whitespace", key, opt.Label)
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("schema %q: duplicate label %q at depth %d", key, label, depth)
		}
		seen[label] = struct{}{}
		if len(opt.Children) > 0 {
			if err := validateLevel(key, opt.Children, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// Contains reports whether every segment of path exists at its level.
func (s *Schema) Contains(path []string) bool {
	return s.find(path) != nil
}

func (s *Schema) find(path []string) *Option {
	if len(path) == 0 || len(path) > MaxDepth {
		return nil
	}
	level := s.Options
	var found *Option
	for _, label := range path {
		found = nil
		for i := range level {
			if level[i].Label == label {
				found = &level[i]
				break
			}
		}
		if found == nil {
			return nil
		}
		level = found.Children
	}
	return found
}

// Depth returns the depth of the deepest option.
func (s *Schema) Depth() int {
	return depthOf(s.Options)
}

func depthOf(options []Option) int {
	deepest := 0
	for _, opt := range options {
		if d := depthOf(opt.Children); d > deepest {
			deepest = d
		}
	}
	if len(options) == 0 {
		return 0
	}
	return deepest + 1
}

// ParseSchemas decodes and validates a schema document.
func ParseSchemas(data []byte) ([]Schema, error) {
	var doc schemaFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode filter schemas: %w", err)
	}
	if len(doc.Schemas) == 0 {
		return nil, errors.New("decode filter schemas: no schemas defined")
	}
	keys := make(map[string]struct{}, len(doc.Schemas))
	for i := range doc.Schemas {
		if err := doc.Schemas[i].Validate(); err != nil {
			return nil, err
		}
		if _, dup := keys[doc.Schemas[i].Key]; dup {
			return nil, fmt.Errorf("duplicate schema key %q", doc.Schemas[i].Key)
		}
		keys[doc.Schemas[i].Key] = struct{}{}
	}
	return doc.Schemas, nil
}

// SchemaSource supplies option schemas. Implementations may read a file, a
// database table or the embedded defaults.
type SchemaSource interface {
	Schemas(ctx context.Context) ([]Schema, error)
}

// EmbeddedSource serves the schemas compiled into the binary.
type EmbeddedSource struct{}

// Schemas implements SchemaSource.
func (EmbeddedSource) Schemas(context.Context) ([]Schema, error) {
	return ParseSchemas(embeddedSchemas)
}

// FileSource reads schemas from a YAML file on every call.
type FileSource struct {
	Path string
}

// Schemas implements SchemaSource.
func (f FileSource) Schemas(context.Context) ([]Schema, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read filter schemas: %w", err)
	}
	return ParseSchemas(data)
}

// SourceFor returns a FileSource when path is set, otherwise the embedded
// defaults.
func SourceFor(path string) SchemaSource {
	if strings.TrimSpace(path) == "" {
		return EmbeddedSource{}
	}
	return FileSource{Path: path}
}

// Catalog indexes schemas by key while keeping their declaration order.
type Catalog struct {
	schemas []*Schema
	byKey   map[string]*Schema
}

// NewCatalog validates schemas and indexes them.
func NewCatalog(schemas []Schema) (*Catalog, error) {
	c := &Catalog{byKey: make(map[string]*Schema, len(schemas))}
	for i := range schemas {
		s := schemas[i]
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byKey[s.Key]; dup {
			return nil, fmt.Errorf("duplicate schema key %q", s.Key)
		}
		c.schemas = append(c.schemas, &s)
		c.byKey[s.Key] = &s
	}
	return c, nil
}

// LoadCatalog reads schemas from src.
func LoadCatalog(ctx context.Context, src SchemaSource) (*Catalog, error) {
	schemas, err := src.Schemas(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(schemas)
}

// Get returns the schema registered under key.
func (c *Catalog) Get(key string) (*Schema, bool) {
	s, ok := c.byKey[key]
	return s, ok
}

// All returns the schemas in declaration order.
func (c *Catalog) All() []*Schema {
	out := make([]*Schema, len(c.schemas))
	copy(out, c.schemas)
	return out
}
