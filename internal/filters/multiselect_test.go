package filters

import (
	"reflect"
	"slices"
	"testing"
)

func TestToggleCascadeClear(t *testing.T) {
	m := NewMultiSelect(mustSchema(t, "categories"))

	m.Toggle([]string{"Commercial"})
	m.Toggle([]string{"Commercial", "Retail"})
	m.Toggle([]string{"Commercial", "Retail", "Mall"})
	if !m.IsSelected([]string{"Commercial", "Retail", "Mall"}) {
		t.Fatal("expected Mall to be selected")
	}

	m.Toggle([]string{"Commercial"})

	if m.IsSelected([]string{"Commercial"}) {
		t.Fatal("expected Commercial to be deselected")
	}
	if m.IsSelected([]string{"Commercial", "Retail"}) {
		t.Fatal("expected Retail to be cleared with its parent")
	}
	if m.IsSelected([]string{"Commercial", "Retail", "Mall"}) {
		t.Fatal("expected Mall to be cleared with its ancestor")
	}
	if got := m.Serialize(); len(got) != 0 {
		t.Fatalf("expected empty serialization, got %v", got)
	}
}

func TestToggleChildDoesNotSelectParent(t *testing.T) {
	m := NewMultiSelect(mustSchema(t, "categories"))

	if !m.Toggle([]string{"Agent", "Real Estate"}) {
		t.Fatal("expected child toggle to be applied")
	}
	if m.IsSelected([]string{"Agent"}) {
		t.Fatal("parent must not be auto-selected")
	}
	if !m.IsSelected([]string{"Agent", "Real Estate"}) {
		t.Fatal("expected child to be selected")
	}
	if got := m.Selected(); len(got) != 0 {
		t.Fatalf("expected no top-level selection, got %v", got)
	}

	// Checking the parent afterwards keeps the child; unchecking drops it.
	m.Toggle([]string{"Agent"})
	if !m.IsSelected([]string{"Agent", "Real Estate"}) {
		t.Fatal("selecting the parent must keep the child")
	}
	m.Toggle([]string{"Agent"})
	if m.IsSelected([]string{"Agent", "Real Estate"}) {
		t.Fatal("deselecting the parent must clear the child")
	}
}

func TestToggleSiblingsAreIndependent(t *testing.T) {
	m := NewMultiSelect(mustSchema(t, "categories"))
	m.Toggle([]string{"Commercial", "Retail"})
	m.Toggle([]string{"Commercial", "Office", "Coworking"})

	m.Toggle([]string{"Commercial", "Retail"})

	if !m.IsSelected([]string{"Commercial", "Office", "Coworking"}) {
		t.Fatal("deselecting a sibling must not touch other branches")
	}
}

func TestToggleUnknownIsNoop(t *testing.T) {
	m := NewMultiSelect(mustSchema(t, "categories"))
	m.Toggle([]string{"Flooring"})
	before := m.Serialize()

	for _, path := range [][]string{
		{"NotARealOption"},
		{"Flooring", "Marble"},
		{"Retail"},
		{"Commercial", "Retail", "Mall", "Kiosk", "Booth"},
		{},
		nil,
	} {
		if m.Toggle(path) {
			t.Fatalf("expected %v to be ignored", path)
		}
	}

	if got := m.Serialize(); !reflect.DeepEqual(got, before) {
		t.Fatalf("state changed: before %v after %v", before, got)
	}
	if got := m.Selected(); !reflect.DeepEqual(got, []string{"Flooring"}) {
		t.Fatalf("unexpected selection %v", got)
	}
}

func TestSerializeOrderAndRestore(t *testing.T) {
	schema := mustSchema(t, "categories")
	m := NewMultiSelect(schema)
	m.Toggle([]string{"Hospitality"})
	m.Toggle([]string{"Commercial", "Retail", "Mall", "Kiosk"})
	m.Toggle([]string{"Agent"})
	m.Toggle([]string{"Commercial", "Retail"})

	want := []string{
		"Agent",
		"Commercial.Retail",
		"Commercial.Retail.Mall.Kiosk",
		"Hospitality",
	}
	got := m.Serialize()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	restored := Restore(schema, got)
	if !reflect.DeepEqual(restored.Serialize(), want) {
		t.Fatalf("round trip mismatch: %v", restored.Serialize())
	}
	if !restored.IsSelected([]string{"Commercial", "Retail", "Mall", "Kiosk"}) {
		t.Fatal("expected deep path after restore")
	}
	if restored.IsSelected([]string{"Commercial", "Retail", "Mall"}) {
		t.Fatal("restore must not check intermediate levels")
	}
}

func TestRestoreSkipsGarbage(t *testing.T) {
	schema := mustSchema(t, "categories")
	m := Restore(schema, []string{"", "  ", "Nope", "Agent.%zz", "Agent..Real Estate", "a.b.c.d.e", " Flooring "})
	if got := m.Serialize(); !reflect.DeepEqual(got, []string{"Flooring"}) {
		t.Fatalf("expected only Flooring, got %v", got)
	}
}

func TestLabelsWithSeparatorsRoundTrip(t *testing.T) {
	schema := &Schema{Key: "odd", Options: []Option{
		{Label: "St. Louis, MO", Children: []Option{{Label: "100% Owned"}}},
		{Label: "Plain"},
	}}
	m := NewMultiSelect(schema)
	m.Toggle([]string{"St. Louis, MO", "100% Owned"})
	m.Toggle([]string{"Plain"})

	serialized := m.Serialize()
	if !reflect.DeepEqual(serialized, []string{"St%2E Louis%2C MO.100%25 Owned", "Plain"}) {
		t.Fatalf("unexpected encoding %v", serialized)
	}
	if got := Restore(schema, serialized).Serialize(); !reflect.DeepEqual(got, serialized) {
		t.Fatalf("round trip mismatch: %v", got)
	}
}

func TestClear(t *testing.T) {
	m := NewMultiSelect(mustSchema(t, "categories"))
	m.Toggle([]string{"Agent"})
	m.Toggle([]string{"Agent", "Real Estate", "Land"})
	m.Toggle([]string{"Crowdfunding", "Debt"})

	m.Clear()

	if m.Len() != 0 || len(m.Selected()) != 0 {
		t.Fatalf("expected empty state, got %v", m.Serialize())
	}
	if !m.Toggle([]string{"Agent"}) || !slices.Equal(m.Selected(), []string{"Agent"}) {
		t.Fatal("expected state to be usable after Clear")
	}
}
