// Package parser normalizes Atom, RSS 0.91/0.92, RSS 1.0 (RDF) and RSS 2.0
// documents into a model.Feed. A document is read in a single forward pass;
// the result is either a complete feed or the first error encountered.
package parser

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lysyi3m/feed-norm/app/model"
	"github.com/lysyi3m/feed-norm/app/xmlsrc"
)

// IDGenerator derives an id for a feed or entry that carries none. It must
// be deterministic for repeated parses of the same document.
type IDGenerator func(links []model.Link, title, summary *model.Text) string

type Option func(*Parser)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithHTMLEntities resolves HTML named entities (&nbsp;, &copy;, ...) that
// are not defined in XML. Without it such entities fail the parse.
func WithHTMLEntities() Option {
	return func(p *Parser) {
		p.htmlEntities = true
	}
}

// WithStrictTimestamps fails the parse with InvalidDateTime on any
// unparseable timestamp instead of omitting the field.
func WithStrictTimestamps() Option {
	return func(p *Parser) {
		p.strictTimestamps = true
	}
}

func WithIDGenerator(gen IDGenerator) Option {
	return func(p *Parser) {
		p.idGenerator = gen
	}
}

// Parser holds parse options. It keeps no per-document state, so one
// Parser may be used from several goroutines at once.
type Parser struct {
	logger           *slog.Logger
	htmlEntities     bool
	strictTimestamps bool
	idGenerator      IDGenerator
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		idGenerator: DefaultID,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Parse reads one feed document with default options.
func Parse(r io.Reader) (*model.Feed, error) {
	return NewParser().Parse(r)
}

// ParseFile opens path, parses it and closes it on every exit path.
func (p *Parser) ParseFile(path string) (*model.Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed file: %w", err)
	}
	defer f.Close()

	return p.Parse(f)
}

func (p *Parser) Parse(r io.Reader) (*model.Feed, error) {
	var srcOpts []xmlsrc.Option
	if p.htmlEntities {
		srcOpts = append(srcOpts, xmlsrc.HTMLEntities())
	}

	root, err := xmlsrc.New(r, srcOpts...).Root()
	if err != nil {
		p.logger.Debug("No root element", "error", err)
		return nil, errNoFeedRoot()
	}
	if root == nil {
		return nil, errNoFeedRoot()
	}

	feedType, ok := detect(root)
	if !ok {
		return nil, errNoFeedRoot()
	}

	m := &mapper{Parser: p}

	var feed *model.Feed
	switch feedType {
	case model.FeedTypeAtom:
		feed, err = m.atomFeed(root)
	case model.FeedTypeRSS2:
		feed, err = m.rss2Feed(root)
	case model.FeedTypeRSS0:
		feed, err = m.rss0Feed(root)
	case model.FeedTypeRSS1:
		feed, err = m.rss1Feed(root)
	}
	if err != nil {
		return nil, wrapXML(err)
	}

	feed.FeedType = feedType
	if feed.ID == "" {
		feed.ID = p.idGenerator(feed.Links, &feed.Title, feed.Description)
	}

	p.logger.Debug("Feed parsed",
		"type", string(feedType),
		"id", feed.ID,
		"entries", len(feed.Entries))

	return feed, nil
}

// detect selects the dialect from the root element. The version attribute
// is consulted only for rss roots; an rss root without a supported version
// is rejected rather than guessed.
func detect(root *xmlsrc.Element) (model.FeedType, bool) {
	switch root.Name.Local {
	case "feed":
		return model.FeedTypeAtom, true
	case "RDF":
		return model.FeedTypeRSS1, true
	case "rss":
		switch root.Attr("version") {
		case "2.0":
			return model.FeedTypeRSS2, true
		case "0.91", "0.92":
			return model.FeedTypeRSS0, true
		}
	}
	return "", false
}

// mapper carries the options of one Parse call into the dialect walkers.
type mapper struct {
	*Parser
}
