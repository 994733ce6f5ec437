package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lysyi3m/feed-norm/app/model"
)

// FeedRecord is a stored feed. Document holds the normalized feed as JSON;
// the other columns are copies of its fields kept for listing and lookup.
type FeedRecord struct {
	ID         string    `db:"id" json:"id"`
	FeedID     string    `db:"feed_id" json:"feed_id"`
	FeedType   string    `db:"feed_type" json:"feed_type"`
	Title      string    `db:"title" json:"title"`
	Link       string    `db:"link" json:"link,omitempty"`
	Language   string    `db:"language" json:"language,omitempty"`
	Profile    string    `db:"profile" json:"profile,omitempty"`
	EntryCount int       `db:"entry_count" json:"entry_count"`
	Document   string    `db:"document" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Feed decodes the stored document.
func (r *FeedRecord) Feed() (*model.Feed, error) {
	var feed model.Feed
	if err := json.Unmarshal([]byte(r.Document), &feed); err != nil {
		return nil, fmt.Errorf("failed to decode feed document %s: %w", r.ID, err)
	}
	if feed.Entries == nil {
		feed.Entries = []model.Entry{}
	}
	return &feed, nil
}

type EntryRecord struct {
	FeedID      string     `db:"feed_id" json:"-"`
	Position    int        `db:"position" json:"position"`
	EntryID     string     `db:"entry_id" json:"id"`
	Title       string     `db:"title" json:"title,omitempty"`
	Link        string     `db:"link" json:"link,omitempty"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	ContentHash string     `db:"content_hash" json:"content_hash"`
	Document    string     `db:"document" json:"-"`
}

func (r *EntryRecord) Entry() (*model.Entry, error) {
	var entry model.Entry
	if err := json.Unmarshal([]byte(r.Document), &entry); err != nil {
		return nil, fmt.Errorf("failed to decode entry document %s/%d: %w", r.FeedID, r.Position, err)
	}
	return &entry, nil
}
