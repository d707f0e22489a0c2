package filters

import (
	"net/url"
	"slices"
	"strings"
)

// selection is one level of checked labels plus the state of the levels
// beneath each label.
type selection struct {
	selected map[string]struct{}
	children map[string]*selection
}

func newSelection() *selection {
	return &selection{
		selected: make(map[string]struct{}),
		children: make(map[string]*selection),
	}
}

func (s *selection) empty() bool {
	return len(s.selected) == 0 && len(s.children) == 0
}

// MultiSelect tracks the checked options of one schema. A child may be checked
// without its parent; unchecking a parent drops every selection beneath it.
// It is not safe for concurrent use.
type MultiSelect struct {
	schema *Schema
	root   *selection
}

// NewMultiSelect returns an empty selection for schema.
func NewMultiSelect(schema *Schema) *MultiSelect {
	return &MultiSelect{schema: schema, root: newSelection()}
}

// Restore rebuilds a selection from the output of Serialize. Entries that do
// not decode or do not exist in schema are skipped.
func Restore(schema *Schema, serialized []string) *MultiSelect {
	m := NewMultiSelect(schema)
	for _, raw := range serialized {
		path, ok := ParsePath(raw)
		if !ok || !schema.Contains(path) {
			continue
		}
		m.mark(path)
	}
	return m
}

// Schema returns the schema this selection is bound to.
func (m *MultiSelect) Schema() *Schema {
	return m.schema
}

// Toggle flips the leaf of path. It reports false, leaving the state untouched,
// when path is empty, too deep, or names a label the schema does not define.
func (m *MultiSelect) Toggle(path []string) bool {
	if !m.schema.Contains(path) {
		return false
	}

	trail := make([]*selection, 0, len(path))
	node := m.root
	for _, label := range path[:len(path)-1] {
		trail = append(trail, node)
		child, ok := node.children[label]
		if !ok {
			child = newSelection()
			node.children[label] = child
		}
		node = child
	}

	leaf := path[len(path)-1]
	if _, on := node.selected[leaf]; !on {
		node.selected[leaf] = struct{}{}
		return true
	}

	delete(node.selected, leaf)
	delete(node.children, leaf)

	// Drop intermediate levels left empty so toggling twice restores the
	// original shape.
	for i := len(trail) - 1; i >= 0 && node.empty(); i-- {
		delete(trail[i].children, path[i])
		node = trail[i]
	}
	return true
}

// IsSelected reports whether the leaf of path is checked.
func (m *MultiSelect) IsSelected(path []string) bool {
	if len(path) == 0 {
		return false
	}
	node := m.root
	for _, label := range path[:len(path)-1] {
		child, ok := node.children[label]
		if !ok {
			return false
		}
		node = child
	}
	_, ok := node.selected[path[len(path)-1]]
	return ok
}

// Selected returns the checked top-level labels in schema order.
func (m *MultiSelect) Selected() []string {
	var out []string
	for _, opt := range m.schema.Options {
		if _, ok := m.root.selected[opt.Label]; ok {
			out = append(out, opt.Label)
		}
	}
	return out
}

// Paths returns every checked node as a label path, depth first in schema
// order with a parent listed before its children.
func (m *MultiSelect) Paths() [][]string {
	var out [][]string
	walkSelected(m.schema.Options, m.root, nil, func(path []string) {
		out = append(out, slices.Clone(path))
	})
	return out
}

func walkSelected(options []Option, node *selection, prefix []string, visit func([]string)) {
	for _, opt := range options {
		path := append(slices.Clip(prefix), opt.Label)
		if _, ok := node.selected[opt.Label]; ok {
			visit(path)
		}
		if child, ok := node.children[opt.Label]; ok {
			walkSelected(opt.Children, child, path, visit)
		}
	}
}

// Serialize encodes every checked node as a dotted path such as
// "Commercial.Retail.Mall". Dots, commas and percent signs inside labels are
// percent-escaped so the result can be joined with commas in a URL.
func (m *MultiSelect) Serialize() []string {
	paths := m.Paths()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, FormatPath(p))
	}
	return out
}

// Len returns the number of checked nodes at every depth.
func (m *MultiSelect) Len() int {
	return len(m.Paths())
}

// Clear unchecks everything.
func (m *MultiSelect) Clear() {
	m.root = newSelection()
}

// mark checks path without touching other state.
func (m *MultiSelect) mark(path []string) {
	node := m.root
	for _, label := range path[:len(path)-1] {
		child, ok := node.children[label]
		if !ok {
			child = newSelection()
			node.children[label] = child
		}
		node = child
	}
	node.selected[path[len(path)-1]] = struct{}{}
}

var segmentEscaper = strings.NewReplacer("%", "%25", ".", "%2E", ",", "%2C")

// FormatPath encodes a label path in the dotted form used by Serialize.
func FormatPath(path []string) string {
	parts := make([]string, len(path))
	for i, label := range path {
		parts[i] = segmentEscaper.Replace(label)
	}
	return strings.Join(parts, ".")
}

// ParsePath decodes one dotted path. It rejects empty segments and paths
// deeper than MaxDepth.
func ParsePath(raw string) ([]string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	parts := strings.Split(raw, ".")
	if len(parts) > MaxDepth {
		return nil, false
	}
	path := make([]string, len(parts))
	for i, part := range parts {
		label, err := url.PathUnescape(part)
		if err != nil || label == "" {
			return nil, false
		}
		path[i] = label
	}
	return path, true
}
