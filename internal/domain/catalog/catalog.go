// Package catalog holds the fixed mapping from maturity labels to FRED
// constant-maturity Treasury series.
package catalog

import (
	"slices"

	"YieldDesk/pkg/date"
)

// MinDate is the earliest date the yield endpoints accept.
var MinDate = date.New(2002, 1, 1)

// Entry maps a human-readable label to a provider series identifier.
type Entry struct {
	Label    string `json:"label"`
	SeriesID string `json:"series_id"`
}

// Catalog is an ordered, read-only set of entries. The zero value is empty.
type Catalog struct {
	entries []Entry
	byLabel map[string]int
}

var treasury = New([]Entry{
	{"1 Month", "DGS1MO"},
	{"3 Month", "DGS3MO"},
	{"6 Month", "DGS6MO"},
	{"1 Year", "DGS1"},
	{"2 Year", "DGS2"},
	{"3 Year", "DGS3"},
	{"5 Year", "DGS5"},
	{"7 Year", "DGS7"},
	{"10 Year", "DGS10"},
	{"20 Year", "DGS20"},
	{"30 Year", "DGS30"},
})

// Treasury returns the constant-maturity Treasury catalog, shortest maturity first.
func Treasury() *Catalog { return treasury }

// New builds a catalog from entries in the given order. Later duplicates of a
// label are ignored.
func New(entries []Entry) *Catalog {
	c := &Catalog{byLabel: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, dup := c.byLabel[e.Label]; dup {
			continue
		}
		c.byLabel[e.Label] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

// Lookup returns the series identifier for label.
func (c *Catalog) Lookup(label string) (string, bool) {
	i, ok := c.byLabel[label]
	if !ok {
		return "", false
	}
	return c.entries[i].SeriesID, true
}

// Labels returns every label in catalog order.
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Label
	}
	return out
}

// Entries returns a copy of the catalog entries.
func (c *Catalog) Entries() []Entry { return slices.Clone(c.entries) }

func (c *Catalog) Len() int { return len(c.entries) }

// Sort returns labels reordered to catalog order. Labels unknown to the
// catalog keep their relative order after the known ones.
func (c *Catalog) Sort(labels []string) []string {
	out := slices.Clone(labels)
	slices.SortStableFunc(out, func(a, b string) int {
		return c.rank(a) - c.rank(b)
	})
	return out
}

func (c *Catalog) rank(label string) int {
	if i, ok := c.byLabel[label]; ok {
		return i
	}
	return len(c.entries)
}
