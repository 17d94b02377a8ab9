// Package tags maintains the derived index of tags referenced by records.
package tags

import (
	"sort"

	"github.com/dukex/textflow/pkg/models"
)

// Index is the distinct, name-sorted set of tags in a record set with per-tag usage counts.
// It is immutable once built.
type Index struct {
	names  []string
	counts map[string]int
}

// Recompute builds the index for records. A tag repeated within one record counts once.
func Recompute(records []*models.Record) *Index {
	counts := make(map[string]int)

	for _, record := range records {
		seen := make(map[string]struct{}, len(record.Tags))

		for _, tag := range record.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}

			seen[tag] = struct{}{}
			counts[tag]++
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}

	sort.Strings(names)

	return &Index{names: names, counts: counts}
}

// Tags returns the tag names sorted ascending.
func (i *Index) Tags() []string {
	out := make([]string, len(i.names))
	copy(out, i.names)

	return out
}

// Count returns the number of records referencing tag.
func (i *Index) Count(tag string) int {
	return i.counts[tag]
}

// Len returns the number of distinct tags.
func (i *Index) Len() int {
	return len(i.names)
}

// Entries returns every tag with its count, sorted by name.
func (i *Index) Entries() []models.SelectableTag {
	entries := make([]models.SelectableTag, 0, len(i.names))

	for _, name := range i.names {
		entries = append(entries, models.SelectableTag{Tag: name, Count: i.counts[name]})
	}

	return entries
}
