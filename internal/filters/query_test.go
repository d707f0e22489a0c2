package filters

import (
	"net/url"
	"reflect"
	"testing"
)

func TestParseQueryToleratesMessyInput(t *testing.T) {
	catalog := mustCatalog(t)
	values := url.Values{
		"categories": {" Agent , ,Commercial.Retail,Unknown", "Flooring.Tile"},
		"services":   {""},
		"other":      {"ignored"},
	}

	fs := ParseQuery(values, catalog)

	categories, ok := fs.Get("categories")
	if !ok {
		t.Fatal("expected categories selection")
	}
	// Schema order: Flooring is declared before Commercial.
	want := []string{"Agent", "Flooring.Tile", "Commercial.Retail"}
	if got := categories.Serialize(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	services, _ := fs.Get("services")
	if services.Len() != 0 {
		t.Fatalf("expected no services, got %v", services.Serialize())
	}
	if _, ok := fs.Get("other"); ok {
		t.Fatal("unknown keys must not create selections")
	}
}

func TestParseQueryEmpty(t *testing.T) {
	fs := ParseQuery(nil, mustCatalog(t))
	if !fs.Empty() {
		t.Fatal("expected empty filter set")
	}
	if enc := fs.Encode(); len(enc) != 0 {
		t.Fatalf("expected no parameters, got %v", enc)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	catalog := mustCatalog(t)
	fs := ParseQuery(url.Values{
		"services":   {"Renovation.Kitchen,Legal"},
		"categories": {"Hospitality.Hotel,Agent.Real Estate.Land"},
	}, catalog)

	encoded := fs.Encode()
	if got := encoded.Get("categories"); got != "Agent.Real Estate.Land,Hospitality.Hotel" {
		t.Fatalf("unexpected categories encoding %q", got)
	}
	if got := encoded.Get("services"); got != "Renovation.Kitchen,Legal" {
		t.Fatalf("unexpected services encoding %q", got)
	}

	again := ParseQuery(encoded, catalog).Encode()
	if !reflect.DeepEqual(again, encoded) {
		t.Fatalf("round trip mismatch: %v vs %v", again, encoded)
	}
}

func TestMatches(t *testing.T) {
	catalog := mustCatalog(t)
	mall := map[string][][]string{
		"categories": {{"Commercial", "Retail", "Mall"}},
		"services":   {{"Property Management"}},
	}
	hotel := map[string][][]string{
		"categories": {{"Hospitality", "Hotel"}},
	}

	cases := []struct {
		name  string
		query url.Values
		mall  bool
		hotel bool
	}{
		{"empty matches all", url.Values{}, true, true},
		{"ancestor covers", url.Values{"categories": {"Commercial"}}, true, false},
		{"exact path", url.Values{"categories": {"Commercial.Retail.Mall"}}, true, false},
		{"deeper selection does not cover shallower tag", url.Values{"categories": {"Commercial.Retail.Mall.Kiosk"}}, false, false},
		{"any selected path", url.Values{"categories": {"Hospitality,Commercial.Office"}}, false, true},
		{"keys intersect", url.Values{"categories": {"Commercial"}, "services": {"Legal"}}, false, false},
		{"keys intersect match", url.Values{"categories": {"Commercial"}, "services": {"Property Management"}}, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs := ParseQuery(tc.query, catalog)
			if got := fs.Matches(mall); got != tc.mall {
				t.Fatalf("mall: expected %v, got %v", tc.mall, got)
			}
			if got := fs.Matches(hotel); got != tc.hotel {
				t.Fatalf("hotel: expected %v, got %v", tc.hotel, got)
			}
		})
	}
}

func TestSelectionsSkipEmptyKeys(t *testing.T) {
	fs := ParseQuery(url.Values{"categories": {"Hospitality.Hotel,Agent"}}, mustCatalog(t))

	got := fs.Selections()
	want := map[string][][]string{
		"categories": {{"Agent"}, {"Hospitality", "Hotel"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMatchTagsAnyKey(t *testing.T) {
	selected := map[string][][]string{"amenities": {{"Parking"}}}

	if !MatchTags(selected, map[string][][]string{"amenities": {{"Parking", "Covered"}}}) {
		t.Fatal("expected ancestor selection to cover tag")
	}
	if MatchTags(selected, map[string][][]string{"categories": {{"Parking"}}}) {
		t.Fatal("tags under another key must not match")
	}
	if !MatchTags(nil, nil) {
		t.Fatal("empty selection must match everything")
	}
}
