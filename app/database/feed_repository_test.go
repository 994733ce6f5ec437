package database

import (
	"context"
	"testing"
	"time"

	"github.com/lysyi3m/feed-norm/app/model"
	"github.com/stretchr/testify/suite"
)

type FeedRepositorySuite struct {
	suite.Suite
	ctx  context.Context
	db   *DB
	repo *FeedRepository
}

func (s *FeedRepositorySuite) SetupTest() {
	s.ctx = context.Background()

	db, err := NewConnection(MemoryPath)
	s.Require().NoError(err)

	version, dirty, err := RunMigrations(db)
	s.Require().NoError(err)
	s.Require().False(dirty)
	s.Require().Equal(uint(2), version)

	s.db = db
	s.repo = NewFeedRepository(db)
}

func (s *FeedRepositorySuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func TestFeedRepositorySuite(t *testing.T) {
	suite.Run(t, new(FeedRepositorySuite))
}

func testFeed(id string, entryIDs ...string) *model.Feed {
	published := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

	feed := &model.Feed{
		FeedType: model.FeedTypeRSS2,
		ID:       id,
		Title:    model.Text{ContentType: model.TextPlain, Value: "Feed " + id},
		Links:    []model.Link{{Href: "https://example.com/" + id, Rel: "alternate"}},
		Language: "en",
		Entries:  []model.Entry{},
	}
	for _, entryID := range entryIDs {
		feed.Entries = append(feed.Entries, model.Entry{
			ID:        entryID,
			Title:     &model.Text{ContentType: model.TextPlain, Value: "Entry " + entryID},
			Links:     []model.Link{{Href: "https://example.com/" + entryID, Rel: "alternate"}},
			Published: &published,
		})
	}
	return feed
}

func (s *FeedRepositorySuite) TestSaveAndGetFeed() {
	record, err := s.repo.SaveFeed(s.ctx, testFeed("https://example.com/feed", "a", "b", "c"), "tech")
	s.Require().NoError(err)
	s.Require().NotNil(record)

	s.Equal(RecordID("https://example.com/feed"), record.ID)
	s.Equal("https://example.com/feed", record.FeedID)
	s.Equal("rss2", record.FeedType)
	s.Equal("Feed https://example.com/feed", record.Title)
	s.Equal("https://example.com/https://example.com/feed", record.Link)
	s.Equal("tech", record.Profile)
	s.Equal(3, record.EntryCount)

	feed, err := record.Feed()
	s.Require().NoError(err)
	s.Equal(model.FeedTypeRSS2, feed.FeedType)
	s.Require().Len(feed.Entries, 3)
	s.Equal("a", feed.Entries[0].ID)
	s.Equal("c", feed.Entries[2].ID)
}

func (s *FeedRepositorySuite) TestSaveFeedReplacesEntries() {
	first, err := s.repo.SaveFeed(s.ctx, testFeed("urn:feed", "a", "b", "c"), "")
	s.Require().NoError(err)

	second, err := s.repo.SaveFeed(s.ctx, testFeed("urn:feed", "c", "d"), "")
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(2, second.EntryCount)

	count, err := s.repo.GetFeedCount(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)

	entries, err := s.repo.ListEntries(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("c", entries[0].EntryID)
	s.Equal(0, entries[0].Position)
	s.Equal("d", entries[1].EntryID)
	s.Equal(1, entries[1].Position)
}

func (s *FeedRepositorySuite) TestListEntries() {
	feed := testFeed("urn:feed", "a", "b")
	feed.Entries[1].Published = nil

	record, err := s.repo.SaveFeed(s.ctx, feed, "")
	s.Require().NoError(err)

	entries, err := s.repo.ListEntries(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)

	s.Equal("Entry a", entries[0].Title)
	s.Equal("https://example.com/a", entries[0].Link)
	s.Require().NotNil(entries[0].PublishedAt)
	s.True(entries[0].PublishedAt.Equal(time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)))
	s.Nil(entries[1].PublishedAt)
	s.Equal(ContentHash(&feed.Entries[0]), entries[0].ContentHash)
	s.NotEqual(entries[0].ContentHash, entries[1].ContentHash)

	entry, err := entries[1].Entry()
	s.Require().NoError(err)
	s.Equal("b", entry.ID)
}

func (s *FeedRepositorySuite) TestGetFeedNotFound() {
	record, err := s.repo.GetFeed(s.ctx, "missing")
	s.Require().NoError(err)
	s.Nil(record)
}

func (s *FeedRepositorySuite) TestListFeeds() {
	feeds, err := s.repo.ListFeeds(s.ctx)
	s.Require().NoError(err)
	s.Empty(feeds)

	_, err = s.repo.SaveFeed(s.ctx, testFeed("urn:one", "a"), "")
	s.Require().NoError(err)
	_, err = s.repo.SaveFeed(s.ctx, testFeed("urn:two"), "")
	s.Require().NoError(err)

	feeds, err = s.repo.ListFeeds(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(feeds, 2)

	ids := []string{feeds[0].FeedID, feeds[1].FeedID}
	s.ElementsMatch([]string{"urn:one", "urn:two"}, ids)
}

func (s *FeedRepositorySuite) TestDeleteFeed() {
	record, err := s.repo.SaveFeed(s.ctx, testFeed("urn:feed", "a", "b"), "")
	s.Require().NoError(err)

	deleted, err := s.repo.DeleteFeed(s.ctx, record.ID)
	s.Require().NoError(err)
	s.True(deleted)

	got, err := s.repo.GetFeed(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Nil(got)

	entries, err := s.repo.ListEntries(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Empty(entries)

	deleted, err = s.repo.DeleteFeed(s.ctx, record.ID)
	s.Require().NoError(err)
	s.False(deleted)
}

func (s *FeedRepositorySuite) TestSaveFeedValidation() {
	_, err := s.repo.SaveFeed(s.ctx, nil, "")
	s.Error(err)

	_, err = s.repo.SaveFeed(s.ctx, &model.Feed{}, "")
	s.Error(err)

	count, err := s.repo.GetFeedCount(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *FeedRepositorySuite) TestRunMigrationsIsIdempotent() {
	version, dirty, err := RunMigrations(s.db)
	s.Require().NoError(err)
	s.False(dirty)
	s.Equal(uint(2), version)
}
