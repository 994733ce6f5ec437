package parser

import (
	"time"

	"github.com/lysyi3m/feed-norm/app/model"
	"github.com/lysyi3m/feed-norm/app/xmlsrc"
)

// entryState collects extension values that only apply as fallbacks once
// the whole entry has been read.
type entryState struct {
	hasEncoded    bool
	dcDate        *time.Time
	dcIdentifier  string
	itunesAuthor  string
	itunesSummary *model.Text
	media         model.MediaObject
}

type feedState struct {
	dcDate       *time.Time
	itunesAuthor string
}

// entryExtension maps namespaced children shared by every dialect's
// entries. It reports false for elements it does not know.
func (m *mapper) entryExtension(el *xmlsrc.Element, entry *model.Entry, st *entryState) (bool, error) {
	switch nsOf(el.Name) {
	case nsDC, nsDCTerms:
		return true, m.dublinCoreEntry(el, entry, st)
	case nsContent:
		if el.Name.Local != "encoded" {
			return false, nil
		}
		body, err := el.Text()
		if err != nil || body == "" {
			return true, err
		}
		entry.Content = &model.Content{Body: body, ContentType: model.MimeTextHTML}
		st.hasEncoded = true
		return true, nil
	case nsMedia:
		return true, m.mediaEntry(el, entry, st)
	case nsITunes:
		return true, m.itunesEntry(el, entry, st)
	case nsAtom:
		switch el.Name.Local {
		case "link":
			if link, ok, err := atomLink(el); err != nil {
				return true, err
			} else if ok {
				entry.Links = append(entry.Links, link)
			}
		case "updated":
			value, err := el.Text()
			if err != nil {
				return true, err
			}
			entry.Updated, err = m.timestamp("entry.updated", value, styleRFC3339)
			return true, err
		}
		return true, nil
	}
	return false, nil
}

// finishEntry applies extension fallbacks and synthesizes a missing id.
func (m *mapper) finishEntry(entry *model.Entry, st *entryState) {
	if entry.Published == nil && st.dcDate != nil {
		entry.Published = st.dcDate
	}
	if len(entry.Authors) == 0 && st.itunesAuthor != "" {
		entry.Authors = append(entry.Authors, model.Person{Name: st.itunesAuthor})
	}
	if entry.Summary == nil && st.itunesSummary != nil {
		entry.Summary = st.itunesSummary
	}
	if hasMedia(st.media) {
		entry.Media = append(entry.Media, st.media)
	}
	if entry.ID == "" {
		entry.ID = st.dcIdentifier
	}
	m.entryID(entry)
}

func (m *mapper) dublinCoreEntry(el *xmlsrc.Element, entry *model.Entry, st *entryState) error {
	value, err := el.Text()
	if err != nil || value == "" {
		return err
	}

	switch el.Name.Local {
	case "creator":
		if p, ok := parsePerson(value); ok {
			entry.Authors = append(entry.Authors, p)
		}
	case "contributor":
		if p, ok := parsePerson(value); ok {
			entry.Contributors = append(entry.Contributors, p)
		}
	case "date":
		st.dcDate, err = m.timestamp("entry.dc:date", value, styleW3CDTF)
	case "created", "issued":
		if entry.Published == nil {
			entry.Published, err = m.timestamp("entry.dcterms:"+el.Name.Local, value, styleW3CDTF)
		}
	case "modified":
		entry.Updated, err = m.timestamp("entry.dcterms:modified", value, styleW3CDTF)
	case "subject":
		entry.Categories = append(entry.Categories, model.Category{Term: value})
	case "rights":
		if entry.Rights == nil {
			entry.Rights = &model.Text{ContentType: model.TextPlain, Value: value}
		}
	case "title":
		if entry.Title == nil {
			entry.Title = &model.Text{ContentType: model.TextPlain, Value: value}
		}
	case "description":
		if entry.Summary == nil {
			entry.Summary = &model.Text{ContentType: model.TextPlain, Value: value}
		}
	case "identifier":
		st.dcIdentifier = value
	case "source":
		if entry.Source == "" {
			entry.Source = value
		}
	}
	return err
}

func (m *mapper) mediaEntry(el *xmlsrc.Element, entry *model.Entry, st *entryState) error {
	switch el.Name.Local {
	case "group":
		obj, err := m.mediaGroup(el)
		if err != nil {
			return err
		}
		if hasMedia(obj) {
			entry.Media = append(entry.Media, obj)
		}
	case "content":
		content, obj, err := m.mediaContent(el)
		if err != nil {
			return err
		}
		obj.Content = append(obj.Content, content)
		entry.Media = append(entry.Media, obj)
	default:
		return m.mediaField(el, &st.media)
	}
	return nil
}

func (m *mapper) mediaGroup(el *xmlsrc.Element) (model.MediaObject, error) {
	var obj model.MediaObject
	for child, err := range el.Children() {
		if err != nil {
			return obj, err
		}
		if nsOf(child.Name) != nsMedia {
			continue
		}

		if child.Name.Local == "content" {
			content, nested, err := m.mediaContent(child)
			if err != nil {
				return obj, err
			}
			obj.Content = append(obj.Content, content)
			mergeMedia(&obj, nested)
			continue
		}

		if err := m.mediaField(child, &obj); err != nil {
			return obj, err
		}
	}
	return obj, nil
}

// mediaContent reads a media:content element. Titles, descriptions and
// thumbnails nested inside it are returned in the second value.
func (m *mapper) mediaContent(el *xmlsrc.Element) (model.MediaContent, model.MediaObject, error) {
	content := model.MediaContent{
		URL:         el.Attr("url"),
		ContentType: el.Attr("type"),
		Medium:      el.Attr("medium"),
		Size:        parseUint64(el.Attr("fileSize")),
		Width:       parseUint32(el.Attr("width")),
		Height:      parseUint32(el.Attr("height")),
		Duration:    parseDuration(el.Attr("duration")),
	}

	var obj model.MediaObject
	for child, err := range el.Children() {
		if err != nil {
			return content, obj, err
		}
		if nsOf(child.Name) != nsMedia {
			continue
		}
		if err := m.mediaField(child, &obj); err != nil {
			return content, obj, err
		}
	}
	return content, obj, nil
}

// mediaField handles the Media RSS elements that describe a media object.
func (m *mapper) mediaField(el *xmlsrc.Element, obj *model.MediaObject) error {
	switch el.Name.Local {
	case "title", "description":
		textType := model.TextPlain
		if el.Attr("type") == "html" {
			textType = model.TextHTML
		}
		text, err := typedText(el, textType)
		if err != nil || text == nil {
			return err
		}
		if el.Name.Local == "title" {
			obj.Title = text
		} else {
			obj.Description = text
		}
	case "thumbnail":
		if url := el.Attr("url"); url != "" {
			obj.Thumbnails = append(obj.Thumbnails, model.Image{
				URI:    url,
				Width:  parseUint32(el.Attr("width")),
				Height: parseUint32(el.Attr("height")),
			})
		}
	}
	return nil
}

func (m *mapper) itunesEntry(el *xmlsrc.Element, entry *model.Entry, st *entryState) error {
	switch el.Name.Local {
	case "author":
		value, err := el.Text()
		if err != nil {
			return err
		}
		st.itunesAuthor = value
	case "summary", "subtitle":
		if st.itunesSummary != nil && el.Name.Local == "subtitle" {
			return nil
		}
		text, err := plainText(el)
		if err != nil {
			return err
		}
		if text != nil {
			st.itunesSummary = text
		}
	case "duration":
		value, err := el.Text()
		if err != nil {
			return err
		}
		st.media.Duration = parseDuration(value)
	case "image":
		if href := el.Attr("href"); href != "" {
			st.media.Thumbnails = append(st.media.Thumbnails, model.Image{URI: href})
		}
	case "keywords":
		value, err := el.Text()
		if err != nil {
			return err
		}
		for _, kw := range splitKeywords(value) {
			entry.Categories = append(entry.Categories, model.Category{Term: kw, Scheme: "itunes"})
		}
	}
	return nil
}

// feedExtension maps namespaced children shared by every dialect's channel.
func (m *mapper) feedExtension(el *xmlsrc.Element, feed *model.Feed, st *feedState) (bool, error) {
	switch nsOf(el.Name) {
	case nsDC, nsDCTerms:
		return true, m.dublinCoreFeed(el, feed, st)
	case nsAtom:
		if el.Name.Local == "link" {
			if link, ok, err := atomLink(el); err != nil {
				return true, err
			} else if ok {
				feed.Links = append(feed.Links, link)
			}
		}
		return true, nil
	case nsITunes:
		return true, m.itunesFeed(el, feed, st)
	}
	return false, nil
}

func (m *mapper) finishFeed(feed *model.Feed, st *feedState) {
	if feed.Updated == nil && st.dcDate != nil {
		feed.Updated = st.dcDate
	}
	if len(feed.Authors) == 0 && st.itunesAuthor != "" {
		feed.Authors = append(feed.Authors, model.Person{Name: st.itunesAuthor})
	}
}

func (m *mapper) dublinCoreFeed(el *xmlsrc.Element, feed *model.Feed, st *feedState) error {
	value, err := el.Text()
	if err != nil || value == "" {
		return err
	}

	switch el.Name.Local {
	case "creator", "publisher":
		if p, ok := parsePerson(value); ok {
			feed.Authors = append(feed.Authors, p)
		}
	case "contributor":
		if p, ok := parsePerson(value); ok {
			feed.Contributors = append(feed.Contributors, p)
		}
	case "date":
		st.dcDate, err = m.timestamp("feed.dc:date", value, styleW3CDTF)
	case "modified":
		feed.Updated, err = m.timestamp("feed.dcterms:modified", value, styleW3CDTF)
	case "subject":
		feed.Categories = append(feed.Categories, model.Category{Term: value})
	case "rights":
		if feed.Rights == nil {
			feed.Rights = &model.Text{ContentType: model.TextPlain, Value: value}
		}
	case "language":
		if feed.Language == "" {
			feed.Language = normalizeLanguage(value)
		}
	case "title":
		if feed.Title.Value == "" {
			feed.Title = model.Text{ContentType: model.TextPlain, Value: value}
		}
	case "description":
		if feed.Description == nil {
			feed.Description = &model.Text{ContentType: model.TextPlain, Value: value}
		}
	}
	return err
}

func (m *mapper) itunesFeed(el *xmlsrc.Element, feed *model.Feed, st *feedState) error {
	switch el.Name.Local {
	case "author":
		value, err := el.Text()
		if err != nil {
			return err
		}
		st.itunesAuthor = value
	case "image":
		if href := el.Attr("href"); href != "" && feed.Logo == nil {
			feed.Logo = &model.Image{URI: href}
		}
	case "summary":
		if feed.Description != nil {
			return nil
		}
		text, err := plainText(el)
		if err != nil {
			return err
		}
		feed.Description = text
	case "category":
		return m.itunesCategory(el, &feed.Categories)
	}
	return nil
}

// itunesCategory flattens nested iTunes categories into the list.
func (m *mapper) itunesCategory(el *xmlsrc.Element, categories *[]model.Category) error {
	if text := el.Attr("text"); text != "" {
		*categories = append(*categories, model.Category{Term: text, Scheme: "itunes"})
	}
	for child, err := range el.Children() {
		if err != nil {
			return err
		}
		if nsOf(child.Name) == nsITunes && child.Name.Local == "category" {
			if err := m.itunesCategory(child, categories); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasMedia(obj model.MediaObject) bool {
	return obj.Title != nil || obj.Description != nil || len(obj.Content) > 0 ||
		len(obj.Thumbnails) > 0 || obj.Duration != nil
}

func mergeMedia(dst *model.MediaObject, src model.MediaObject) {
	if dst.Title == nil {
		dst.Title = src.Title
	}
	if dst.Description == nil {
		dst.Description = src.Description
	}
	dst.Thumbnails = append(dst.Thumbnails, src.Thumbnails...)
}
