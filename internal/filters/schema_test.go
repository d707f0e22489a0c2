package filters

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mustCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := LoadCatalog(context.Background(), EmbeddedSource{})
	if err != nil {
		t.Fatalf("load embedded catalog: %v", err)
	}
	return catalog
}

func mustSchema(t *testing.T, key string) *Schema {
	t.Helper()
	schema, ok := mustCatalog(t).Get(key)
	if !ok {
		t.Fatalf("schema %q missing", key)
	}
	return schema
}

func TestEmbeddedSchemas(t *testing.T) {
	catalog := mustCatalog(t)
	keys := make([]string, 0)
	for _, s := range catalog.All() {
		keys = append(keys, s.Key)
		if s.Depth() > MaxDepth {
			t.Fatalf("schema %q deeper than %d", s.Key, MaxDepth)
		}
	}
	if strings.Join(keys, ",") != "categories,services" {
		t.Fatalf("unexpected schema order %v", keys)
	}

	categories, _ := catalog.Get("categories")
	if categories.Depth() != MaxDepth {
		t.Fatalf("expected categories to use the full depth, got %d", categories.Depth())
	}
	for _, path := range [][]string{
		{"Agent", "Real Estate"},
		{"Commercial", "Retail", "Mall"},
		{"Commercial", "Retail", "Mall", "Kiosk"},
		{"Hospitality"},
	} {
		if !categories.Contains(path) {
			t.Fatalf("expected %v in categories", path)
		}
	}
	if categories.Contains([]string{"Retail"}) {
		t.Fatal("child label must not match at the top level")
	}
}

func TestParseSchemasRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":     "schemas: []",
		"no key":    "schemas:\n  - options:\n      - label: A\n",
		"duplicate": "schemas:\n  - key: k\n    options:\n      - label: A\n      - label: A\n",
		"blank":     "schemas:\n  - key: k\n    options:\n      - label: ' '\n",
		"too deep": `schemas:
  - key: k
    options:
      - label: A
        children:
          - label: B
            children:
              - label: C
                children:
                  - label: D
                    children:
                      - label: E
`,
		"same key": "schemas:\n  - key: k\n    options: [{label: A}]\n  - key: k\n    options: [{label: B}]\n",
		"not yaml": "schemas: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseSchemas([]byte(doc)); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestSourceFor(t *testing.T) {
	if _, ok := SourceFor("  ").(EmbeddedSource); !ok {
		t.Fatal("expected embedded source for blank path")
	}

	path := filepath.Join(t.TempDir(), "schemas.yaml")
	doc := "schemas:\n  - key: amenities\n    options:\n      - label: Parking\n      - label: Pool\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	catalog, err := LoadCatalog(context.Background(), SourceFor(path))
	if err != nil {
		t.Fatalf("load file catalog: %v", err)
	}
	if _, ok := catalog.Get("amenities"); !ok {
		t.Fatal("expected amenities schema from file")
	}
	if _, ok := catalog.Get("categories"); ok {
		t.Fatal("file source must replace the embedded schemas")
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := FileSource{Path: filepath.Join(t.TempDir(), "missing.yaml")}.Schemas(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
