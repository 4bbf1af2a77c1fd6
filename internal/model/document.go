// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data: similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import (
	"strings"
	"time"
)

// DefaultSentiment is assigned to every document whose source does not tag one.
const DefaultSentiment = "neutral"

// DefaultTitle replaces a missing title so the required field is never empty.
const DefaultTitle = "No Title"

// LivePrefix marks identifiers that exist only inside a single response.
// Documents from live sources are never stored, so their IDs cannot be favorited.
const LivePrefix = "live-"

// Document represents one article or recipe.
//
// IDENTITY:
// URL is the canonical source link and the dedup key: the store keeps it UNIQUE.
// ID is the store-assigned xid, used by the API to reference a document
// (e.g. POST /api/articles/{id}/favorite).
//
// Published is whatever the source handed us ("2025-09-06T10:00:00+09:00",
// "Sat, 06 Sep 2025 10:00:00 +0900", "2025/09/06 10:00:00"...). PublishedAt is the
// parsed form when one of the known layouts matched; retention orders by it.
type Document struct {
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	Published    string     `json:"publishedDate,omitempty"`
	PublishedAt  *time.Time `json:"-"`
	Summary      string     `json:"summary,omitempty"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	Sentiment    string     `json:"sentiment"`
	Category     Category   `json:"category"`
	Source       string     `json:"source"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Persisted reports whether the document carries a store-assigned ID.
func (d *Document) Persisted() bool {
	return d.ID != "" && !strings.HasPrefix(d.ID, LivePrefix)
}

// Text is the free text the recommender analyses: title and summary joined by a space.
func (d *Document) Text() string {
	return d.Title + " " + d.Summary
}

// publishedLayouts are tried in order by ParsePublished.
// The list covers the formats our sources emit: ISO-8601 from JSON APIs,
// RFC-1123 from RSS and the slash form used by the recipe ranking API.
var publishedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// ParsePublished converts a source-supplied timestamp into UTC.
// It returns nil when the marker is empty or matches none of the known layouts;
// callers keep the raw string either way.
func ParsePublished(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
