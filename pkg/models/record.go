package models

import (
	"slices"
	"time"
)

// Record is a single saved, tagged, timestamped unit of text backed by one file.
type Record struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	Text        string    `json:"text"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasTag reports whether the record carries tag.
func (r *Record) HasTag(tag string) bool {
	return slices.Contains(r.Tags, tag)
}

// Clone returns a copy of the record that shares no slices with r.
func (r *Record) Clone() *Record {
	clone := *r
	clone.Tags = slices.Clone(r.Tags)

	return &clone
}
