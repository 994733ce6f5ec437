package parser

import (
	"strconv"
	"strings"

	"github.com/lysyi3m/feed-norm/app/model"
	"github.com/lysyi3m/feed-norm/app/xmlsrc"
)

// rssDialect selects the element set of the RSS 0.9x / 2.0 family.
type rssDialect int

const (
	rss09x rssDialect = iota
	rss20
)

func (m *mapper) rss2Feed(root *xmlsrc.Element) (*model.Feed, error) {
	return m.rssFeed(root, rss20)
}

func (m *mapper) rssFeed(root *xmlsrc.Element, dialect rssDialect) (*model.Feed, error) {
	var feed *model.Feed
	for child, err := range root.Children() {
		if err != nil {
			return nil, err
		}
		if child.Name.Local == "channel" && isCore(child.Name, nsNone) && feed == nil {
			if feed, err = m.rssChannel(child, dialect); err != nil {
				return nil, err
			}
		}
	}
	if feed == nil {
		return nil, errMissingContent("channel")
	}
	return feed, nil
}

func (m *mapper) rssChannel(el *xmlsrc.Element, dialect rssDialect) (*model.Feed, error) {
	feed := &model.Feed{
		Title:   model.Text{ContentType: model.TextHTML},
		Entries: []model.Entry{},
	}
	st := &feedState{}

	for child, err := range el.Children() {
		if err != nil {
			return nil, err
		}

		if !isCore(child.Name, nsNone) {
			if _, err := m.feedExtension(child, feed, st); err != nil {
				return nil, err
			}
			continue
		}

		switch child.Name.Local {
		case "title":
			title, err := htmlText(child)
			if err != nil {
				return nil, err
			}
			if title != nil {
				feed.Title = *title
			}
		case "link":
			if link, err := rssLink(child); err != nil {
				return nil, err
			} else if link != nil {
				feed.Links = append(feed.Links, *link)
			}
		case "description":
			if feed.Description, err = htmlText(child); err != nil {
				return nil, err
			}
		case "language":
			value, err := child.Text()
			if err != nil {
				return nil, err
			}
			feed.Language = normalizeLanguage(value)
		case "copyright":
			if feed.Rights, err = plainText(child); err != nil {
				return nil, err
			}
		case "managingEditor":
			if p, ok, err := rssPerson(child); err != nil {
				return nil, err
			} else if ok {
				feed.Authors = append(feed.Authors, p)
			}
		case "webMaster":
			if p, ok, err := rssPerson(child); err != nil {
				return nil, err
			} else if ok {
				feed.Contributors = append(feed.Contributors, p)
			}
		case "pubDate":
			value, err := child.Text()
			if err != nil {
				return nil, err
			}
			if feed.Published, err = m.timestamp("feed.pubDate", value, styleRFC822); err != nil {
				return nil, err
			}
		case "lastBuildDate":
			value, err := child.Text()
			if err != nil {
				return nil, err
			}
			if feed.Updated, err = m.timestamp("feed.lastBuildDate", value, styleRFC822); err != nil {
				return nil, err
			}
		case "category":
			if c, ok, err := rssCategory(child); err != nil {
				return nil, err
			} else if ok {
				feed.Categories = append(feed.Categories, c)
			}
		case "generator":
			if dialect != rss20 {
				continue
			}
			value, err := child.Text()
			if err != nil {
				return nil, err
			}
			if value != "" {
				feed.Generator = &model.Generator{Content: value}
			}
		case "ttl":
			if dialect != rss20 {
				continue
			}
			value, err := child.Text()
			if err != nil {
				return nil, err
			}
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				feed.TTL = n
			}
		case "image":
			image, err := rssImage(child)
			if err != nil {
				return nil, err
			}
			if image != nil {
				feed.Logo = image
			}
		case "item":
			entry, err := m.rssItem(child, dialect)
			if err != nil {
				return nil, err
			}
			feed.Entries = append(feed.Entries, *entry)
		}
	}

	m.finishFeed(feed, st)
	if feed.Updated == nil {
		feed.Updated = feed.Published
	}
	return feed, nil
}

func (m *mapper) rssItem(el *xmlsrc.Element, dialect rssDialect) (*model.Entry, error) {
	entry := &model.Entry{}
	st := &entryState{}
	var guid string
	permalink := false

	for child, err := range el.Children() {
		if err != nil {
			return nil, err
		}

		if !isCore(child.Name, nsNone) {
			if _, err := m.entryExtension(child, entry, st); err != nil {
				return nil, err
			}
			continue
		}

		switch child.Name.Local {
		case "title":
			if entry.Title, err = htmlText(child); err != nil {
				return nil, err
			}
		case "link":
			if link, err := rssLink(child); err != nil {
				return nil, err
			} else if link != nil {
				entry.Links = append(entry.Links, *link)
			}
		case "description":
			if entry.Summary, err = htmlText(child); err != nil {
				return nil, err
			}
		case "category":
			if c, ok, err := rssCategory(child); err != nil {
				return nil, err
			} else if ok {
				entry.Categories = append(entry.Categories, c)
			}
		case "enclosure":
			link, ok := rssEnclosure(child)
			if !ok {
				continue
			}
			entry.Links = append(entry.Links, link)
			if !st.hasEncoded && entry.Content == nil {
				entry.Content = enclosureContent(link)
			}
		case "source":
			if entry.Source = child.Attr("url"); entry.Source == "" {
				if entry.Source, err = child.Text(); err != nil {
					return nil, err
				}
			}
		}

		if dialect != rss20 {
			continue
		}

		switch child.Name.Local {
		case "author":
			if p, ok, err := rssPerson(child); err != nil {
				return nil, err
			} else if ok {
				entry.Authors = append(entry.Authors, p)
			}
		case "comments":
			value, err := child.Text()
			if err != nil {
				return nil, err
			}
			if value != "" {
				entry.Links = append(entry.Links, model.Link{Href: value, Rel: "replies"})
			}
		case "guid":
			if guid, err = child.Text(); err != nil {
				return nil, err
			}
			permalink = !strings.EqualFold(child.Attr("isPermaLink"), "false")
		case "pubDate":
			value, err := child.Text()
			if err != nil {
				return nil, err
			}
			if entry.Published, err = m.timestamp("entry.pubDate", value, styleRFC822); err != nil {
				return nil, err
			}
		}
	}

	if guid != "" {
		entry.ID = guid
		if permalink && len(entry.Links) == 0 && isAbsoluteURL(guid) {
			entry.Links = append(entry.Links, model.Link{Href: guid, Rel: "alternate"})
		}
	}

	m.finishEntry(entry, st)
	if entry.Updated == nil {
		entry.Updated = entry.Published
	}
	return entry, nil
}

// rssLink reads a channel or item link. Whitespace-only links are dropped.
func rssLink(el *xmlsrc.Element) (*model.Link, error) {
	value, err := el.Text()
	if err != nil || value == "" {
		return nil, err
	}
	return &model.Link{Href: value, Rel: "alternate"}, nil
}

func rssPerson(el *xmlsrc.Element) (model.Person, bool, error) {
	value, err := el.Text()
	if err != nil {
		return model.Person{}, false, err
	}
	p, ok := parsePerson(value)
	return p, ok, nil
}

func rssCategory(el *xmlsrc.Element) (model.Category, bool, error) {
	value, err := el.Text()
	if err != nil {
		return model.Category{}, false, err
	}
	return model.Category{Term: value, Scheme: el.Attr("domain")}, value != "", nil
}

func rssEnclosure(el *xmlsrc.Element) (model.Link, bool) {
	link := model.Link{
		Href:      el.Attr("url"),
		Rel:       "enclosure",
		MediaType: el.Attr("type"),
		Length:    parseUint64(el.Attr("length")),
	}
	return link, link.Href != ""
}

// enclosureContent describes an enclosure as out-of-line content.
func enclosureContent(link model.Link) *model.Content {
	src := link
	return &model.Content{
		ContentType: firstNonEmpty(link.MediaType, "application/octet-stream"),
		Length:      link.Length,
		Src:         &src,
	}
}

// rssImage reads a channel image. An image without a url is ignored.
func rssImage(el *xmlsrc.Element) (*model.Image, error) {
	image := &model.Image{}
	for child, err := range el.Children() {
		if err != nil {
			return nil, err
		}
		if !isCore(child.Name, nsNone) && !isCore(child.Name, nsRSS1) {
			continue
		}

		value, err := child.Text()
		if err != nil {
			return nil, err
		}
		switch child.Name.Local {
		case "url":
			image.URI = value
		case "title":
			image.Title = value
		case "link":
			if value != "" {
				image.Link = &model.Link{Href: value, Rel: "alternate"}
			}
		case "width":
			image.Width = parseUint32(value)
		case "height":
			image.Height = parseUint32(value)
		case "description":
			image.Description = value
		}
	}
	if image.URI == "" {
		return nil, nil
	}
	return image, nil
}

func isAbsoluteURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}
