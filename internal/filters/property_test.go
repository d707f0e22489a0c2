package filters

import (
	"reflect"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// pathFrom walks the schema choosing options by index, so any int slice maps
// to a valid path of length 1..MaxDepth.
func pathFrom(schema *Schema, picks []int) []string {
	var path []string
	level := schema.Options
	for _, pick := range picks {
		if len(level) == 0 || len(path) == MaxDepth {
			break
		}
		opt := level[pick%len(level)]
		path = append(path, opt.Label)
		level = opt.Children
	}
	if len(path) == 0 {
		path = []string{schema.Options[0].Label}
	}
	return path
}

func stateFrom(schema *Schema, history [][]int) *MultiSelect {
	m := NewMultiSelect(schema)
	for _, picks := range history {
		m.Toggle(pathFrom(schema, picks))
	}
	return m
}

func isDescendant(p, ancestor []string) bool {
	return len(p) > len(ancestor) && slices.Equal(p[:len(ancestor)], ancestor)
}

var (
	picksGen   = gen.SliceOfN(MaxDepth, gen.IntRange(0, 64))
	historyGen = gen.SliceOf(picksGen)
)

func TestTogglePropertiesHold(t *testing.T) {
	schema := mustSchema(t, "categories")

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("toggling a path twice restores everything outside its subtree", prop.ForAll(
		func(history [][]int, picks []int) bool {
			m := stateFrom(schema, history)
			path := pathFrom(schema, picks)

			// Cascade clearing means descendants of path do not come back;
			// everything else must be exactly as before.
			var want [][]string
			for _, p := range m.Paths() {
				if !isDescendant(p, path) {
					want = append(want, p)
				}
			}

			m.Toggle(path)
			m.Toggle(path)

			return reflect.DeepEqual(m.Paths(), want)
		},
		historyGen,
		picksGen,
	))

	properties.Property("toggling a node without checked descendants twice is a no-op", prop.ForAll(
		func(history [][]int, picks []int) bool {
			m := stateFrom(schema, history)
			path := pathFrom(schema, picks)
			for _, p := range m.Paths() {
				if isDescendant(p, path) {
					return true
				}
			}
			before := m.Serialize()
			m.Toggle(path)
			m.Toggle(path)
			return slices.Equal(m.Serialize(), before)
		},
		historyGen,
		picksGen,
	))

	properties.Property("serialize, restore, serialize is stable", prop.ForAll(
		func(history [][]int) bool {
			first := stateFrom(schema, history).Serialize()
			second := Restore(schema, first).Serialize()
			return slices.Equal(first, second)
		},
		historyGen,
	))

	properties.Property("deselecting a node leaves nothing beneath it", prop.ForAll(
		func(history [][]int, picks []int) bool {
			m := stateFrom(schema, history)
			path := pathFrom(schema, picks)
			if !m.IsSelected(path) {
				m.Toggle(path)
			}
			m.Toggle(path)
			for _, p := range m.Paths() {
				if isDescendant(p, path) {
					return false
				}
			}
			return true
		},
		historyGen,
		picksGen,
	))

	properties.TestingRun(t)
}
