package domain

import (
	"strings"
	"time"
)

// LeechTag is added to a note whose card crosses the leech threshold.
const LeechTag = "leech"

type Note struct {
	ID     int64
	GUID   string
	Fields []string
	Tags   []string
	Mod    time.Time
}

// Front returns the first field, or "" for an empty note.
func (n *Note) Front() string {
	if len(n.Fields) == 0 {
		return ""
	}
	return n.Fields[0]
}

// Back returns the second field, or "" when the note has only one.
func (n *Note) Back() string {
	if len(n.Fields) < 2 {
		return ""
	}
	return n.Fields[1]
}

// HasTag compares case-insensitively.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// AddTag adds tag unless the note already carries it. Returns true when the
// tag list changed.
func (n *Note) AddTag(tag string) bool {
	if n.HasTag(tag) {
		return false
	}
	n.Tags = append(n.Tags, tag)
	return true
}

// TagString renders tags in the space-separated storage form, padded so
// that "% tag %" LIKE matching works.
func (n *Note) TagString() string {
	if len(n.Tags) == 0 {
		return ""
	}
	return " " + strings.Join(n.Tags, " ") + " "
}

// ParseTags splits the storage form back into a slice.
func ParseTags(s string) []string {
	return strings.Fields(s)
}
