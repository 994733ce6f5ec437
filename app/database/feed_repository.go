package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lysyi3m/feed-norm/app/model"
)

const feedColumns = `id, feed_id, feed_type, title, link, language, profile, entry_count, document, created_at, updated_at`

// FeedRepository stores normalized feeds together with one row per entry.
type FeedRepository struct {
	db *DB
	tm *TransactionManager
}

func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{db: db, tm: NewTransactionManager(db)}
}

// RecordID is the storage id of a feed. It is derived from the feed's own id,
// so saving the same feed again replaces the previous copy.
func RecordID(feedID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(feedID)).String()
}

// SaveFeed upserts the feed and replaces its entries in one transaction.
// Entries keep their document order through the position column.
func (r *FeedRepository) SaveFeed(ctx context.Context, feed *model.Feed, profile string) (*FeedRecord, error) {
	if feed == nil {
		return nil, fmt.Errorf("feed is nil")
	}
	if feed.ID == "" {
		return nil, fmt.Errorf("feed id is required")
	}

	document, err := json.Marshal(feed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}

	id := RecordID(feed.ID)
	now := time.Now().UTC()

	err = r.tm.WithTransaction(ctx, func(ctx context.Context) error {
		exec := GetExecutor(ctx, r.db)

		_, err := exec.ExecContext(ctx, `
			INSERT INTO feeds (id, feed_id, feed_type, title, link, language, profile, entry_count, document, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				feed_type = excluded.feed_type,
				title = excluded.title,
				link = excluded.link,
				language = excluded.language,
				profile = excluded.profile,
				entry_count = excluded.entry_count,
				document = excluded.document,
				updated_at = excluded.updated_at
		`, id, feed.ID, string(feed.FeedType), feed.Title.Value, feed.Link(), feed.Language, profile,
			len(feed.Entries), string(document), now, now)
		if err != nil {
			return fmt.Errorf("failed to upsert feed: %w", err)
		}

		if _, err := exec.ExecContext(ctx, `DELETE FROM entries WHERE feed_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear entries: %w", err)
		}

		for i := range feed.Entries {
			if err := r.insertEntry(ctx, exec, id, i, &feed.Entries[i]); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetFeed(ctx, id)
}

func (r *FeedRepository) insertEntry(ctx context.Context, exec sqlx.ExtContext, feedID string, position int, entry *model.Entry) error {
	document, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry %s: %w", entry.ID, err)
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO entries (feed_id, position, entry_id, title, link, published_at, content_hash, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, feedID, position, entry.ID, model.TextValue(entry.Title), entry.Link(), entryTime(entry),
		ContentHash(entry), string(document))
	if err != nil {
		return fmt.Errorf("failed to insert entry %s: %w", entry.ID, err)
	}

	return nil
}

// GetFeed returns nil without an error when no feed has the given id.
func (r *FeedRepository) GetFeed(ctx context.Context, id string) (*FeedRecord, error) {
	var record FeedRecord
	err := sqlx.GetContext(ctx, GetExecutor(ctx, r.db), &record,
		`SELECT `+feedColumns+` FROM feeds WHERE id = ?`, id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return &record, nil
}

// ListFeeds returns all feeds, most recently saved first.
func (r *FeedRepository) ListFeeds(ctx context.Context) ([]FeedRecord, error) {
	feeds := []FeedRecord{}
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, r.db), &feeds,
		`SELECT `+feedColumns+` FROM feeds ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	return feeds, nil
}

// ListEntries returns the entry rows of a feed in document order.
func (r *FeedRepository) ListEntries(ctx context.Context, id string) ([]EntryRecord, error) {
	entries := []EntryRecord{}
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, r.db), &entries, `
		SELECT feed_id, position, entry_id, title, link, published_at, content_hash, document
		FROM entries
		WHERE feed_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

func (r *FeedRepository) GetFeedCount(ctx context.Context) (int, error) {
	var count int
	err := GetExecutor(ctx, r.db).QueryRowxContext(ctx, "SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

// DeleteFeed removes the feed and its entries. It reports whether a feed
// with that id existed.
func (r *FeedRepository) DeleteFeed(ctx context.Context, id string) (bool, error) {
	var deleted bool

	err := r.tm.WithTransaction(ctx, func(ctx context.Context) error {
		exec := GetExecutor(ctx, r.db)

		if _, err := exec.ExecContext(ctx, `DELETE FROM entries WHERE feed_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete entries: %w", err)
		}

		result, err := exec.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete feed: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		deleted = affected > 0

		return nil
	})

	return deleted, err
}

// ContentHash fingerprints an entry by id, title and link.
func ContentHash(entry *model.Entry) string {
	content := strings.Join([]string{entry.ID, model.TextValue(entry.Title), entry.Link()}, "|")
	return fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
}

func entryTime(entry *model.Entry) *time.Time {
	if entry.Published != nil {
		return entry.Published
	}
	return entry.Updated
}
