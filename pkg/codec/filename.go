package codec

import (
	"strconv"
	"strings"
	"time"
)

// Extension is the fixed extension of record files.
const Extension = ".md"

// fileNameLayout encodes the creation time with second precision; it sorts lexically.
const fileNameLayout = "2006-01-02-1504-05"

// FileName derives the record file name for createdAt.
func FileName(createdAt time.Time) string {
	return createdAt.Format(fileNameLayout) + Extension
}

// FileNameWithSequence derives the file name for the seq-th record created in the
// same second. Sequence numbers below 2 yield the plain name.
func FileNameWithSequence(createdAt time.Time, seq int) string {
	if seq < 2 {
		return FileName(createdAt)
	}

	return createdAt.Format(fileNameLayout) + "-" + strconv.Itoa(seq) + Extension
}

// ParseFileName decodes a record file name in the local time zone. It reports
// false for any name that does not round-trip through FileNameWithSequence.
func ParseFileName(name string) (time.Time, int, bool) {
	return ParseFileNameInLocation(name, time.Local)
}

// ParseFileNameInLocation is ParseFileName with an explicit location.
func ParseFileNameInLocation(name string, loc *time.Location) (time.Time, int, bool) {
	stem, ok := strings.CutSuffix(name, Extension)
	if !ok || len(stem) < len(fileNameLayout) {
		return time.Time{}, 0, false
	}

	seq := 1

	if suffix := stem[len(fileNameLayout):]; suffix != "" {
		digits, ok := strings.CutPrefix(suffix, "-")
		if !ok {
			return time.Time{}, 0, false
		}

		n, err := strconv.Atoi(digits)
		if err != nil || n < 2 {
			return time.Time{}, 0, false
		}

		seq = n
	}

	createdAt, err := time.ParseInLocation(fileNameLayout, stem[:len(fileNameLayout)], loc)
	if err != nil {
		return time.Time{}, 0, false
	}

	if FileNameWithSequence(createdAt, seq) != name {
		return time.Time{}, 0, false
	}

	return createdAt, seq, true
}
