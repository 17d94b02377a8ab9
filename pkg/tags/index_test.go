package tags

import (
	"testing"

	"github.com/dukex/textflow/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestRecompute(t *testing.T) {
	records := []*models.Record{
		{ID: "1", Tags: []string{"work", "ideas"}},
		{ID: "2", Tags: []string{"work"}},
		{ID: "3", Tags: nil},
		{ID: "4", Tags: []string{"personal", "work", "work"}},
	}

	index := Recompute(records)

	assert.Equal(t, []string{"ideas", "personal", "work"}, index.Tags())
	assert.Equal(t, 3, index.Count("work"))
	assert.Equal(t, 1, index.Count("ideas"))
	assert.Equal(t, 0, index.Count("missing"))
	assert.Equal(t, 1, index.Count("personal"))
	assert.Equal(t, 3, index.Len())
	assert.Equal(t, []models.SelectableTag{
		{Tag: "ideas", Count: 1},
		{Tag: "personal", Count: 1},
		{Tag: "work", Count: 3},
	}, index.Entries())
}

func TestRecompute_DropsUnreferencedTags(t *testing.T) {
	records := []*models.Record{{ID: "1", Tags: []string{"old"}}}
	assert.Equal(t, 1, Recompute(records).Count("old"))

	records[0].Tags = nil
	index := Recompute(records)

	assert.Zero(t, index.Count("old"))
	assert.Empty(t, index.Tags())
}

func TestIndex_TagsIsACopy(t *testing.T) {
	index := Recompute([]*models.Record{{Tags: []string{"a"}}})

	tags := index.Tags()
	tags[0] = "mutated"

	assert.Equal(t, []string{"a"}, index.Tags())
}
