// Package codec converts records to and from text blobs carrying an embedded front matter header.
package codec

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Marker delimits the front matter block.
const Marker = "---"

// DescriptionLength is the number of characters of body text used as the default description.
const DescriptionLength = 50

const (
	keyCreated     = "created"
	keyDescription = "description"
	keyTags        = "tags"
)

// Decoded is the result of decoding a blob.
type Decoded struct {
	Description string
	Tags        []string
	Body        string
	// CreatedAt is zero when the header has no parseable created line.
	CreatedAt time.Time
}

// Encode renders the front matter header followed by a blank line and the body verbatim.
func Encode(text, description string, tags []string, createdAt time.Time) string {
	var b strings.Builder

	b.Grow(len(text) + len(description) + 64)

	b.WriteString(Marker)
	b.WriteByte('\n')
	b.WriteString(keyCreated + ": ")
	b.WriteString(createdAt.Format(time.RFC3339))
	b.WriteByte('\n')
	b.WriteString(keyDescription + ": ")
	b.WriteString(strconv.Quote(description))
	b.WriteByte('\n')

	if len(tags) > 0 {
		b.WriteString(keyTags + ":\n")

		for _, tag := range tags {
			b.WriteString("  - ")
			b.WriteString(strconv.Quote(tag))
			b.WriteByte('\n')
		}
	}

	b.WriteString(Marker)
	b.WriteString("\n\n")
	b.WriteString(text)

	return b.String()
}

// Decode returns the description, tags and body stored in blob.
func Decode(blob string) (string, []string, string) {
	decoded := DecodeRecord(blob)

	return decoded.Description, decoded.Tags, decoded.Body
}

// DecodeRecord parses blob. A blob that does not start with the marker line, or
// that has no closing marker line, is returned entirely as body.
func DecodeRecord(blob string) Decoded {
	first, rest, found := strings.Cut(blob, "\n")
	if !found || strings.TrimSuffix(first, "\r") != Marker {
		return Decoded{Tags: []string{}, Body: blob}
	}

	header, body, ok := splitHeader(rest)
	if !ok {
		return Decoded{Tags: []string{}, Body: blob}
	}

	decoded := parseHeader(header)
	decoded.Body = stripSeparator(body)

	return decoded
}

// splitHeader finds the closing marker line in s and returns the header lines
// before it and the remaining text after it.
func splitHeader(s string) ([]string, string, bool) {
	var header []string

	for len(s) > 0 {
		line, rest, found := strings.Cut(s, "\n")
		if strings.TrimSuffix(line, "\r") == Marker {
			return header, rest, true
		}

		header = append(header, line)

		if !found {
			break
		}

		s = rest
	}

	return nil, "", false
}

func parseHeader(lines []string) Decoded {
	decoded := Decoded{Tags: []string{}}
	collecting := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if collecting && strings.HasPrefix(trimmed, "-") {
			item := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))
			decoded.Tags = append(decoded.Tags, unquote(item))

			continue
		}

		key, value, found := strings.Cut(trimmed, ":")
		if !found {
			continue
		}

		collecting = false
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case keyCreated:
			if createdAt, err := time.Parse(time.RFC3339, value); err == nil {
				decoded.CreatedAt = createdAt
			}
		case keyDescription:
			decoded.Description = unquote(value)
		case keyTags:
			collecting = true
		}
	}

	return decoded
}

// stripSeparator removes the single blank line written between the header and the body.
func stripSeparator(body string) string {
	if strings.HasPrefix(body, "\r\n") {
		return body[2:]
	}

	return strings.TrimPrefix(body, "\n")
}

func unquote(value string) string {
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
		return value
	}

	if unquoted, err := strconv.Unquote(value); err == nil {
		return unquoted
	}

	return value[1 : len(value)-1]
}

// DefaultDescription returns the first DescriptionLength characters of text.
func DefaultDescription(text string) string {
	if utf8.RuneCountInString(text) <= DescriptionLength {
		return text
	}

	runes := []rune(text)

	return string(runes[:DescriptionLength])
}
