// Package protocol implements the gateway's line protocol: splitting
// a received or to-be-sent line into a message type and content at a
// configured delimiter.
package protocol

import "strings"

// Parse splits line into (type, content) at the first occurrence of
// delimiter, per spec § 4.3. A line must have both a delimiter and a
// line terminator ("\n" or "\r") to parse; otherwise Parse returns
// ("", ""). A delimiter that first appears after the first terminator
// is not part of the line, so such a line also returns ("", "").
// Terminators after the delimiter are excluded from content,
// which makes Parse tolerant of a trailing CR after LF or vice versa.
// An empty type is permitted as long as a delimiter and content exist.
func Parse(line, delimiter string) (typ, content string) {
	delimiterPos := strings.Index(line, delimiter)
	terminatorPos := strings.IndexAny(line, "\n\r")

	if delimiterPos < 0 || terminatorPos < 0 || delimiterPos > terminatorPos {
		return "", ""
	}

	typ = line[:delimiterPos]

	if delimiterPos < terminatorPos {
		content = line[delimiterPos+len(delimiter) : terminatorPos]
	}

	return typ, content
}
