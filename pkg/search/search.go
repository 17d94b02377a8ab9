// Package search filters records by free-text query and tag selections and
// computes the tags still selectable at each filter level.
package search

import (
	"sort"
	"strings"

	"github.com/dukex/textflow/pkg/models"
)

// Query is the complete filter state: a free-text query and an ordered stack of tag selections.
type Query struct {
	Text       string                `json:"text"`
	Selections []models.TagSelection `json:"selections"`
}

// Result is the visible record subset for a query and the selectable tags per level.
type Result struct {
	Records []*models.Record     `json:"records"`
	Levels  []models.FilterLevel `json:"levels"`
}

// Apply evaluates q against records.
func Apply(records []*models.Record, q Query) Result {
	return Result{
		Records: Filter(records, q.Selections, q.Text),
		Levels:  Levels(records, q.Selections, q.Text),
	}
}

// Tokenize splits query on whitespace and lowercases each token.
func Tokenize(query string) []string {
	fields := strings.Fields(query)

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		tokens = append(tokens, strings.ToLower(field))
	}

	return tokens
}

// Filter returns the records, in input order, that match every search token and every selection.
func Filter(records []*models.Record, selections []models.TagSelection, query string) []*models.Record {
	tokens := Tokenize(query)

	visible := make([]*models.Record, 0, len(records))

	for _, record := range records {
		if MatchesTokens(record, tokens) && MatchesAll(record, selections) {
			visible = append(visible, record)
		}
	}

	return visible
}

// MatchesTokens reports whether every token is a substring of the record body or of one of its tags.
// Tokens must already be lowercased.
func MatchesTokens(record *models.Record, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}

	body := strings.ToLower(record.Text)

	tags := make([]string, len(record.Tags))
	for i, tag := range record.Tags {
		tags[i] = strings.ToLower(tag)
	}

	for _, token := range tokens {
		if !matchesToken(body, tags, token) {
			return false
		}
	}

	return true
}

func matchesToken(body string, tags []string, token string) bool {
	if strings.Contains(body, token) {
		return true
	}

	for _, tag := range tags {
		if strings.Contains(tag, token) {
			return true
		}
	}

	return false
}

// Matches reports whether record satisfies a single selection.
func Matches(record *models.Record, selection models.TagSelection) bool {
	var present bool

	if selection.NoTags {
		present = len(record.Tags) == 0
	} else {
		present = record.HasTag(selection.Tag)
	}

	if selection.Exclude {
		return !present
	}

	return present
}

// MatchesAll reports whether record satisfies every selection.
func MatchesAll(record *models.Record, selections []models.TagSelection) bool {
	for _, selection := range selections {
		if !Matches(record, selection) {
			return false
		}
	}

	return true
}

// Levels computes, for each filter level k from 0 to len(selections), the tags
// selectable over the records passing the search and the first k selections.
// Tags named by any selection are never candidates. Candidates are ordered by
// descending count then ascending name; levels without candidates are omitted.
func Levels(records []*models.Record, selections []models.TagSelection, query string) []models.FilterLevel {
	tokens := Tokenize(query)

	selected := make(map[string]struct{}, len(selections))

	for _, selection := range selections {
		if !selection.NoTags {
			selected[selection.Tag] = struct{}{}
		}
	}

	searched := make([]*models.Record, 0, len(records))

	for _, record := range records {
		if MatchesTokens(record, tokens) {
			searched = append(searched, record)
		}
	}

	levels := make([]models.FilterLevel, 0, len(selections)+1)
	subset := searched

	for k := 0; k <= len(selections); k++ {
		if k > 0 {
			subset = narrow(subset, selections[k-1])
		}

		candidates := candidateTags(subset, selected)
		if len(candidates) == 0 {
			continue
		}

		levels = append(levels, models.FilterLevel{Index: k, Tags: candidates})
	}

	return levels
}

func narrow(records []*models.Record, selection models.TagSelection) []*models.Record {
	out := make([]*models.Record, 0, len(records))

	for _, record := range records {
		if Matches(record, selection) {
			out = append(out, record)
		}
	}

	return out
}

func candidateTags(records []*models.Record, selected map[string]struct{}) []models.SelectableTag {
	counts := make(map[string]int)

	for _, record := range records {
		seen := make(map[string]struct{}, len(record.Tags))

		for _, tag := range record.Tags {
			if _, ok := selected[tag]; ok {
				continue
			}

			if _, dup := seen[tag]; dup {
				continue
			}

			seen[tag] = struct{}{}
			counts[tag]++
		}
	}

	candidates := make([]models.SelectableTag, 0, len(counts))
	for tag, count := range counts {
		candidates = append(candidates, models.SelectableTag{Tag: tag, Count: count})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Count != candidates[j].Count {
			return candidates[i].Count > candidates[j].Count
		}

		return candidates[i].Tag < candidates[j].Tag
	})

	return candidates
}
