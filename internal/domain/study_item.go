package domain

import (
	"errors"
	"fmt"
	"time"
)

// StudyItemKind identifies which collection a study item belongs to
type StudyItemKind string

const (
	KindNote       StudyItemKind = "note"
	KindBookmark   StudyItemKind = "bookmark"
	KindSavedPoint StudyItemKind = "saved-point"
)

// ErrInvalidKind is returned for an unknown study item kind
var ErrInvalidKind = errors.New("invalid study item kind")

// StudyItem is a user-curated snippet taken from an assistant message.
// The kind is serialized as "type" so documents written by the web client load unchanged.
type StudyItem struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Kind      StudyItemKind `json:"type"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
}

// StudyData is the persisted study document
type StudyData struct {
	Notes       []StudyItem `json:"notes"`
	Bookmarks   []StudyItem `json:"bookmarks"`
	SavedPoints []StudyItem `json:"savedPoints"`
}

// Normalize replaces nil collections with empty ones so the document always
// serializes three arrays.
func (d StudyData) Normalize() StudyData {
	if d.Notes == nil {
		d.Notes = []StudyItem{}
	}
	if d.Bookmarks == nil {
		d.Bookmarks = []StudyItem{}
	}
	if d.SavedPoints == nil {
		d.SavedPoints = []StudyItem{}
	}
	return d
}

// ParseStudyItemKind accepts both the item kind and its plural route form
func ParseStudyItemKind(s string) (StudyItemKind, error) {
	switch s {
	case "note", "notes":
		return KindNote, nil
	case "bookmark", "bookmarks":
		return KindBookmark, nil
	case "saved-point", "saved-points", "point", "points":
		return KindSavedPoint, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Valid reports whether k is a known kind
func (k StudyItemKind) Valid() bool {
	switch k {
	case KindNote, KindBookmark, KindSavedPoint:
		return true
	}
	return false
}

// DefaultTitle is used when an item is added without a title
func (k StudyItemKind) DefaultTitle() string {
	switch k {
	case KindBookmark:
		return "Untitled Bookmark"
	case KindSavedPoint:
		return "Untitled Point"
	default:
		return "Untitled Note"
	}
}

// TitleFor is the title given to an item saved from a chat message in a subject
func (k StudyItemKind) TitleFor(subject string) string {
	switch k {
	case KindBookmark:
		return "Bookmark from " + subject
	case KindSavedPoint:
		return "Key Point from " + subject
	default:
		return "Note from " + subject
	}
}
