package wecs

import "strings"

// Tag constants
const (
	tagName = "wecs"
)

// Tag modifiers
const (
	modOpt = "opt" // Optional (zero value / nil if missing)
)

// TagInfo holds parsed tag information for a query shape field.
type TagInfo struct {
	Optional bool // wecs:"opt"
}

// parseTag parses a wecs struct tag.
func parseTag(tag string) TagInfo {
	info := TagInfo{}
	if tag == "" {
		return info
	}

	for part := range strings.SplitSeq(tag, ",") {
		switch strings.TrimSpace(part) {
		case modOpt:
			info.Optional = true
		}
	}

	return info
}
