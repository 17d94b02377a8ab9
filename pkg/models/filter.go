package models

// TagSelection is a single filter constraint applied during record filtering.
// When NoTags is set, Tag is ignored and the selection matches records without
// any tag (or, with Exclude, records with at least one tag).
type TagSelection struct {
	Tag     string `json:"tag,omitempty"`
	NoTags  bool   `json:"no_tags,omitempty"`
	Exclude bool   `json:"exclude,omitempty"`
}

// IncludeTag selects records carrying tag.
func IncludeTag(tag string) TagSelection {
	return TagSelection{Tag: tag}
}

// ExcludeTag selects records not carrying tag.
func ExcludeTag(tag string) TagSelection {
	return TagSelection{Tag: tag, Exclude: true}
}

// Untagged selects records without tags, or with exclude set, records with at least one tag.
func Untagged(exclude bool) TagSelection {
	return TagSelection{NoTags: true, Exclude: exclude}
}

// SelectableTag is a candidate tag at a filter level with its occurrence count.
type SelectableTag struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// FilterLevel is the set of tags still selectable after the first Index selections.
type FilterLevel struct {
	Index int             `json:"index"`
	Tags  []SelectableTag `json:"tags"`
}
