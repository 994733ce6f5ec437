package api

import (
	"context"
	"io"

	"github.com/lysyi3m/feed-norm/app/database"
	"github.com/lysyi3m/feed-norm/app/feed"
	"github.com/lysyi3m/feed-norm/app/model"
	"github.com/lysyi3m/feed-norm/app/parser"
)

type ParserInterface interface {
	Parse(r io.Reader) (*model.Feed, error)
}

var _ ParserInterface = (*parser.Parser)(nil)

type GeneratorInterface interface {
	Run(feed *model.Feed, selfLink string) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type FeedRepository interface {
	SaveFeed(ctx context.Context, feed *model.Feed, profile string) (*database.FeedRecord, error)
	GetFeed(ctx context.Context, id string) (*database.FeedRecord, error)
	ListFeeds(ctx context.Context) ([]database.FeedRecord, error)
	ListEntries(ctx context.Context, id string) ([]database.EntryRecord, error)
	GetFeedCount(ctx context.Context) (int, error)
	DeleteFeed(ctx context.Context, id string) (bool, error)
}

var _ FeedRepository = (*database.FeedRepository)(nil)

type Handler struct {
	parser       ParserInterface
	feedRepo     FeedRepository
	generator    GeneratorInterface
	profileCache *feed.ProfileCache
	filterer     *feed.Filterer
	baseUrl      string
	maxBodyBytes int64
	version      string
}

type FeedResponse struct {
	Feed     *model.Feed          `json:"feed"`
	Rejected []feed.Rejection     `json:"rejected,omitempty"`
	Record   *database.FeedRecord `json:"record,omitempty"`
}

type ErrorResponse struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Field    string `json:"field,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}
