package parser

import (
	"github.com/lysyi3m/feed-norm/app/model"
	"github.com/lysyi3m/feed-norm/app/xmlsrc"
)

// RSS 0.91 and 0.92 share the 2.0 element names but lack guid, author,
// comments, generator and ttl. 0.92 items add category, enclosure and source.
func (m *mapper) rss0Feed(root *xmlsrc.Element) (*model.Feed, error) {
	return m.rssFeed(root, rss09x)
}
