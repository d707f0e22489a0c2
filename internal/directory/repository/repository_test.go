package repository

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseTagsSkipsUndecodable(t *testing.T) {
	got := parseTags(
		[]string{"categories", "categories", "categories", "services", "services", "amenities"},
		[]string{"Commercial.Retail.Mall", "", "Agent..X", "St%2E Louis", "a.b.c.d.e", "Parking"},
	)
	want := map[string][][]string{
		"categories": {{"Commercial", "Retail", "Mall"}},
		"services":   {{"St. Louis"}},
		"amenities":  {{"Parking"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseTagsMismatchedArrays(t *testing.T) {
	got := parseTags([]string{"categories"}, []string{"Agent", "Flooring"})
	if len(got["categories"]) != 1 {
		t.Fatalf("expected only paired entries, got %v", got)
	}
}

func TestTagPredicatesNumberAfterExistingArgs(t *testing.T) {
	sql, args := tagPredicates(map[string][][]string{
		"services":   {{"Legal"}},
		"categories": {{"Commercial", "Retail"}, {"Hospitality"}},
		"empty":      nil,
	}, []interface{}{"search", "zip"})

	if len(args) != 8 {
		t.Fatalf("expected 2 base args plus 3 per key, got %d: %v", len(args), args)
	}
	// Keys are sorted so the placeholders are stable.
	if args[2] != "categories" || args[5] != "services" {
		t.Fatalf("unexpected key order %v", args)
	}
	if !reflect.DeepEqual(args[3], []string{"Commercial.Retail", "Hospitality"}) {
		t.Fatalf("unexpected exact paths %v", args[3])
	}
	if !reflect.DeepEqual(args[4], []string{"Commercial.Retail.%", "Hospitality.%"}) {
		t.Fatalf("unexpected prefix patterns %v", args[4])
	}
	for _, placeholder := range []string{"$3", "$4::text[]", "$5::text[]", "$6", "$7::text[]", "$8::text[]"} {
		if !strings.Contains(sql, placeholder) {
			t.Fatalf("expected %s in %s", placeholder, sql)
		}
	}
	if strings.Count(sql, "EXISTS") != 2 {
		t.Fatalf("expected one clause per non-empty key, got %s", sql)
	}
}

func TestTagPredicatesEscapeLikeWildcards(t *testing.T) {
	_, args := tagPredicates(map[string][][]string{
		"categories": {{"100% Off_Sale"}},
	}, nil)
	if !reflect.DeepEqual(args[1], []string{"100%25 Off_Sale"}) {
		t.Fatalf("unexpected exact path %v", args[1])
	}
	if !reflect.DeepEqual(args[2], []string{`100\%25 Off\_Sale.%`}) {
		t.Fatalf("unexpected prefix pattern %v", args[2])
	}
}

func TestTagPredicatesEmpty(t *testing.T) {
	sql, args := tagPredicates(nil, []interface{}{"a"})
	if sql != "" || len(args) != 1 {
		t.Fatalf("expected no clause, got %q %v", sql, args)
	}
}
