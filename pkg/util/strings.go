package util

import "unicode/utf8"

// MaxLogBodySize is the default maximum body size for logging, in characters.
const MaxLogBodySize = 10000

// TruncationMarker is appended to bodies cut by TruncateBody.
const TruncationMarker = "...(truncated)"

// TruncateBody truncates a string to maxSize characters, appending "...(truncated)" if truncated.
// If maxSize <= 0, uses MaxLogBodySize.
func TruncateBody(data string, maxSize int) string {
	if maxSize <= 0 {
		maxSize = MaxLogBodySize
	}
	if utf8.RuneCountInString(data) <= maxSize {
		return data
	}
	n := 0
	for i := range data {
		if n == maxSize {
			return data[:i] + TruncationMarker
		}
		n++
	}
	return data
}
