package geo

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed zipcodes.yaml
var defaultZipTableYAML []byte

var zipPattern = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)

// ZipTable maps five digit US postal codes to approximate centroids.
type ZipTable struct {
	entries map[string]Coordinate
}

type zipTableFile struct {
	Zipcodes map[string]Coordinate `yaml:"zipcodes"`
}

// DefaultZipTable returns the embedded table. It panics only if the embedded
// file is malformed, which the package tests guard against.
func DefaultZipTable() *ZipTable {
	table, err := ParseZipTable(defaultZipTableYAML)
	if err != nil {
		panic(fmt.Sprintf("geo: embedded zip table: %v", err))
	}
	return table
}

// ParseZipTable reads a YAML document of the form
//
//	zipcodes:
//	  "10001": { lat: 40.75, lng: -73.99 }
func ParseZipTable(raw []byte) (*ZipTable, error) {
	var file zipTableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse zip table: %w", err)
	}

	entries := make(map[string]Coordinate, len(file.Zipcodes))
	for zip, coord := range file.Zipcodes {
		if !isZip5(zip) {
			return nil, fmt.Errorf("parse zip table: invalid zip %q", zip)
		}
		if !coord.Valid() {
			return nil, fmt.Errorf("parse zip table: invalid coordinate for %s", zip)
		}
		entries[zip] = coord
	}
	return &ZipTable{entries: entries}, nil
}

// NewZipTable builds a table from an in-memory map.
func NewZipTable(entries map[string]Coordinate) *ZipTable {
	copied := make(map[string]Coordinate, len(entries))
	for zip, coord := range entries {
		copied[zip] = coord
	}
	return &ZipTable{entries: copied}
}

// Lookup returns the centroid for zip.
func (t *ZipTable) Lookup(zip string) (Coordinate, bool) {
	if t == nil {
		return Coordinate{}, false
	}
	coord, ok := t.entries[strings.TrimSpace(zip)]
	return coord, ok
}

// Len returns the number of entries.
func (t *ZipTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// ExtractZIP returns the last five digit group in address (ZIP+4 suffixes are
// dropped), or "" when none is present. The last match wins because street
// numbers come first in US addresses.
func ExtractZIP(address string) string {
	matches := zipPattern.FindAllStringSubmatch(address, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}

func isZip5(value string) bool {
	if len(value) != 5 {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
