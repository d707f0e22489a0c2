package filters

import (
	"net/url"
	"slices"
	"strings"
)

// FilterSet is the selection state of every schema in a catalog, as carried by
// a search URL.
type FilterSet struct {
	catalog    *Catalog
	selections map[string]*MultiSelect
}

// ParseQuery reads one comma-separated list per schema key. Missing keys,
// empty values and unknown labels are tolerated. Repeated keys are merged.
func ParseQuery(values url.Values, catalog *Catalog) *FilterSet {
	fs := &FilterSet{catalog: catalog, selections: make(map[string]*MultiSelect)}
	for _, schema := range catalog.All() {
		fs.selections[schema.Key] = Restore(schema, splitList(values[schema.Key]))
	}
	return fs
}

func splitList(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Get returns the selection for key.
func (fs *FilterSet) Get(key string) (*MultiSelect, bool) {
	m, ok := fs.selections[key]
	return m, ok
}

// Empty reports whether nothing is selected under any key.
func (fs *FilterSet) Empty() bool {
	for _, m := range fs.selections {
		if m.Len() > 0 {
			return false
		}
	}
	return true
}

// Encode writes the non-empty selections back as query parameters.
func (fs *FilterSet) Encode() url.Values {
	out := url.Values{}
	for _, schema := range fs.catalog.All() {
		m := fs.selections[schema.Key]
		if m == nil {
			continue
		}
		if serialized := m.Serialize(); len(serialized) > 0 {
			out.Set(schema.Key, strings.Join(serialized, ","))
		}
	}
	return out
}

// Selections returns the selected label paths per key, leaving out keys with
// nothing selected. Paths are listed in schema order.
func (fs *FilterSet) Selections() map[string][][]string {
	out := make(map[string][][]string)
	for key, m := range fs.selections {
		if paths := m.Paths(); len(paths) > 0 {
			out[key] = paths
		}
	}
	return out
}

// Matches reports whether a record tagged with the given label paths passes
// the filter.
func (fs *FilterSet) Matches(record map[string][][]string) bool {
	return MatchTags(fs.Selections(), record)
}

// MatchTags combines keys with AND. Within a key the record needs one path
// covered by a selected path, either equal to it or one of its ancestors.
func MatchTags(selected, record map[string][][]string) bool {
	for key, paths := range selected {
		if len(paths) == 0 {
			continue
		}
		if !anyCovered(paths, record[key]) {
			return false
		}
	}
	return true
}

func anyCovered(selected, tagged [][]string) bool {
	for _, path := range tagged {
		for _, sel := range selected {
			if len(sel) <= len(path) && slices.Equal(sel, path[:len(sel)]) {
				return true
			}
		}
	}
	return false
}
