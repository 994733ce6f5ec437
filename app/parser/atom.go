package parser

import (
	"github.com/lysyi3m/feed-norm/app/model"
	"github.com/lysyi3m/feed-norm/app/xmlsrc"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

func (m *mapper) atomFeed(root *xmlsrc.Element) (*model.Feed, error) {
	feed := &model.Feed{
		Title:    model.Text{ContentType: model.TextPlain},
		Language: normalizeLanguage(root.AttrNS(xmlNamespace, "lang")),
		Entries:  []model.Entry{},
	}
	st := &feedState{}

	for child, err := range root.Children() {
		if err != nil {
			return nil, err
		}

		if !isCore(child.Name, nsAtom) {
			if _, err := m.feedExtension(child, feed, st); err != nil {
				return nil, err
			}
			continue
		}

		switch child.Name.Local {
		case "id":
			if feed.ID, err = requiredText(child, "id"); err != nil {
				return nil, err
			}
		case "title":
			title, err := atomText(child)
			if err != nil {
				return nil, err
			}
			if title != nil {
				feed.Title = *title
			}
		case "updated", "modified":
			value, err := child.Text()
			if err != nil {
				return nil, err
			}
			if feed.Updated, err = m.timestamp("feed.updated", value, styleRFC3339); err != nil {
				return nil, err
			}
		case "published":
			value, err := child.Text()
			if err != nil {
				return nil, err
			}
			if feed.Published, err = m.timestamp("feed.published", value, styleRFC3339); err != nil {
				return nil, err
			}
		case "author":
			if p, ok, err := atomPerson(child); err != nil {
				return nil, err
			} else if ok {
				feed.Authors = append(feed.Authors, p)
			}
		case "contributor":
			if p, ok, err := atomPerson(child); err != nil {
				return nil, err
			} else if ok {
				feed.Contributors = append(feed.Contributors, p)
			}
		case "subtitle", "tagline":
			if feed.Description, err = atomText(child); err != nil {
				return nil, err
			}
		case "link":
			if link, ok, err := atomLink(child); err != nil {
				return nil, err
			} else if ok {
				feed.Links = append(feed.Links, link)
			}
		case "category":
			if c, ok := atomCategory(child); ok {
				feed.Categories = append(feed.Categories, c)
			}
		case "generator":
			content, err := child.Text()
			if err != nil {
				return nil, err
			}
			if content != "" {
				feed.Generator = &model.Generator{
					Content: content,
					URI:     firstNonEmpty(child.Attr("uri"), child.Attr("url")),
					Version: child.Attr("version"),
				}
			}
		case "icon", "logo":
			uri, err := child.Text()
			if err != nil {
				return nil, err
			}
			if uri == "" {
				continue
			}
			if child.Name.Local == "icon" {
				feed.Icon = &model.Image{URI: uri}
			} else {
				feed.Logo = &model.Image{URI: uri}
			}
		case "rights", "copyright":
			if feed.Rights, err = atomText(child); err != nil {
				return nil, err
			}
		case "entry":
			entry, err := m.atomEntry(child)
			if err != nil {
				return nil, err
			}
			feed.Entries = append(feed.Entries, *entry)
		}
	}

	m.finishFeed(feed, st)
	return feed, nil
}

func (m *mapper) atomEntry(el *xmlsrc.Element) (*model.Entry, error) {
	entry := &model.Entry{}
	st := &entryState{}

	for child, err := range el.Children() {
		if err != nil {
			return nil, err
		}

		if !isCore(child.Name, nsAtom) {
			if _, err := m.entryExtension(child, entry, st); err != nil {
				return nil, err
			}
			continue
		}

		switch child.Name.Local {
		case "id":
			if entry.ID, err = requiredText(child, "entry.id"); err != nil {
				return nil, err
			}
		case "title":
			if entry.Title, err = atomText(child); err != nil {
				return nil, err
			}
		case "updated", "modified":
			value, err := child.Text()
			if err != nil {
				return nil, err
			}
			if entry.Updated, err = m.timestamp("entry.updated", value, styleRFC3339); err != nil {
				return nil, err
			}
		case "published", "issued":
			value, err := child.Text()
			if err != nil {
				return nil, err
			}
			if entry.Published, err = m.timestamp("entry.published", value, styleRFC3339); err != nil {
				return nil, err
			}
		case "author":
			if p, ok, err := atomPerson(child); err != nil {
				return nil, err
			} else if ok {
				entry.Authors = append(entry.Authors, p)
			}
		case "contributor":
			if p, ok, err := atomPerson(child); err != nil {
				return nil, err
			} else if ok {
				entry.Contributors = append(entry.Contributors, p)
			}
		case "content":
			if entry.Content, err = atomContent(child); err != nil {
				return nil, err
			}
		case "summary":
			if entry.Summary, err = atomText(child); err != nil {
				return nil, err
			}
		case "link":
			if link, ok, err := atomLink(child); err != nil {
				return nil, err
			} else if ok {
				entry.Links = append(entry.Links, link)
			}
		case "category":
			if c, ok := atomCategory(child); ok {
				entry.Categories = append(entry.Categories, c)
			}
		case "source":
			if entry.Source, err = atomSource(child); err != nil {
				return nil, err
			}
		case "rights":
			if entry.Rights, err = atomText(child); err != nil {
				return nil, err
			}
		}
	}

	m.finishEntry(entry, st)
	return entry, nil
}

// atomContent reads an Atom content element. Out-of-line content carries
// only a src reference and no body.
func atomContent(el *xmlsrc.Element) (*model.Content, error) {
	mimeType, err := contentMimeType(el.Attr("type"))
	if err != nil {
		return nil, err
	}

	content := &model.Content{ContentType: mimeType}
	if src := el.Attr("src"); src != "" {
		content.Src = &model.Link{Href: src, MediaType: el.Attr("type")}
		if err := el.Skip(); err != nil {
			return nil, err
		}
		return content, nil
	}

	if mimeType == model.MimeXHTML {
		content.Body, err = el.InnerXML()
	} else {
		content.Body, err = el.Text()
	}
	if err != nil {
		return nil, err
	}
	if content.Body != "" {
		n := uint64(len(content.Body))
		content.Length = &n
	}
	return content, nil
}

// atomPerson reads an author or contributor construct. A person without a
// name is dropped.
func atomPerson(el *xmlsrc.Element) (model.Person, bool, error) {
	var p model.Person
	for child, err := range el.Children() {
		if err != nil {
			return p, false, err
		}
		if !isCore(child.Name, nsAtom) {
			continue
		}

		value, err := child.Text()
		if err != nil {
			return p, false, err
		}
		switch child.Name.Local {
		case "name":
			p.Name = value
		case "email":
			p.Email = value
		case "uri", "url":
			p.URI = value
		}
	}
	return p, p.Name != "", nil
}

// atomLink reads a link element. Atom 0.3 and RSS producers sometimes put
// the URI in the text instead of href, so that is accepted as a fallback.
func atomLink(el *xmlsrc.Element) (model.Link, bool, error) {
	link := model.Link{
		Href:      el.Attr("href"),
		Rel:       el.Attr("rel"),
		MediaType: el.Attr("type"),
		HrefLang:  el.Attr("hreflang"),
		Title:     el.Attr("title"),
		Length:    parseUint64(el.Attr("length")),
	}
	if link.Href == "" {
		text, err := el.Text()
		if err != nil {
			return model.Link{}, false, err
		}
		link.Href = text
	}
	if link.Rel == "" {
		link.Rel = "alternate"
	}
	return link, link.Href != "", nil
}

func atomCategory(el *xmlsrc.Element) (model.Category, bool) {
	c := model.Category{
		Term:   el.Attr("term"),
		Scheme: el.Attr("scheme"),
		Label:  el.Attr("label"),
	}
	return c, c.Term != ""
}

// atomSource returns the id of the feed an entry was copied from, falling
// back to its self or alternate link.
func atomSource(el *xmlsrc.Element) (string, error) {
	var id string
	var links []model.Link
	for child, err := range el.Children() {
		if err != nil {
			return "", err
		}
		if !isCore(child.Name, nsAtom) {
			continue
		}
		switch child.Name.Local {
		case "id":
			if id, err = child.Text(); err != nil {
				return "", err
			}
		case "link":
			if link, ok, err := atomLink(child); err != nil {
				return "", err
			} else if ok {
				links = append(links, link)
			}
		}
	}
	if id != "" {
		return id, nil
	}
	for _, link := range links {
		if link.Rel == "self" {
			return link.Href, nil
		}
	}
	return model.PrimaryLink(links), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
