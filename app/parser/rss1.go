package parser

import (
	"slices"

	"github.com/lysyi3m/feed-norm/app/model"
	"github.com/lysyi3m/feed-norm/app/xmlsrc"
)

const rdfNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

// rss1Item keeps the rdf:about of an item until the channel's item list
// is known.
type rss1Item struct {
	about string
	entry model.Entry
}

type rss1Image struct {
	about string
	image *model.Image
}

// rss1Feed maps an RDF document. Channel, items and images are siblings
// under the root and reference each other by URI, so they are collected in
// one pass and linked afterwards.
func (m *mapper) rss1Feed(root *xmlsrc.Element) (*model.Feed, error) {
	var (
		feed     *model.Feed
		seq      []string
		imageRef string
		items    []rss1Item
		images   []rss1Image
	)

	for child, err := range root.Children() {
		if err != nil {
			return nil, err
		}
		if !isCore(child.Name, nsRSS1) {
			continue
		}

		switch child.Name.Local {
		case "channel":
			if feed != nil {
				continue
			}
			if feed, seq, imageRef, err = m.rss1Channel(child); err != nil {
				return nil, err
			}
		case "item":
			about := rdfAbout(child)
			entry, err := m.rss1Item(child, about)
			if err != nil {
				return nil, err
			}
			items = append(items, rss1Item{about: about, entry: *entry})
		case "image":
			about := rdfAbout(child)
			image, err := rssImage(child)
			if err != nil {
				return nil, err
			}
			if image != nil {
				images = append(images, rss1Image{about: about, image: image})
			}
		}
	}

	if feed == nil {
		return nil, errMissingContent("channel")
	}

	feed.Entries = resolveItems(items, seq)
	if feed.Logo == nil {
		feed.Logo = resolveImage(images, imageRef)
	}
	return feed, nil
}

// rss1Channel returns the feed together with the item URIs listed in the
// channel's rdf:Seq and the rdf:resource of its image.
func (m *mapper) rss1Channel(el *xmlsrc.Element) (*model.Feed, []string, string, error) {
	feed := &model.Feed{
		ID:      rdfAbout(el),
		Title:   model.Text{ContentType: model.TextPlain},
		Entries: []model.Entry{},
	}
	st := &feedState{}
	var seq []string
	var imageRef string

	for child, err := range el.Children() {
		if err != nil {
			return nil, nil, "", err
		}

		if !isCore(child.Name, nsRSS1) {
			if _, err := m.feedExtension(child, feed, st); err != nil {
				return nil, nil, "", err
			}
			continue
		}

		switch child.Name.Local {
		case "title":
			title, err := plainText(child)
			if err != nil {
				return nil, nil, "", err
			}
			if title != nil {
				feed.Title = *title
			}
		case "link":
			if link, err := rssLink(child); err != nil {
				return nil, nil, "", err
			} else if link != nil {
				feed.Links = append(feed.Links, *link)
			}
		case "description":
			if feed.Description, err = htmlText(child); err != nil {
				return nil, nil, "", err
			}
		case "image":
			imageRef = rdfResource(child)
			// an inline image is seen in the wild as well
			image, err := rssImage(child)
			if err != nil {
				return nil, nil, "", err
			}
			if image != nil {
				feed.Logo = image
			}
		case "items":
			if seq, err = rdfSeq(child); err != nil {
				return nil, nil, "", err
			}
		}
	}

	m.finishFeed(feed, st)
	return feed, seq, imageRef, nil
}

func (m *mapper) rss1Item(el *xmlsrc.Element, about string) (*model.Entry, error) {
	entry := &model.Entry{ID: about}
	st := &entryState{}

	for child, err := range el.Children() {
		if err != nil {
			return nil, err
		}

		if !isCore(child.Name, nsRSS1) {
			if _, err := m.entryExtension(child, entry, st); err != nil {
				return nil, err
			}
			continue
		}

		switch child.Name.Local {
		case "title":
			if entry.Title, err = plainText(child); err != nil {
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
		}
	}

	m.finishEntry(entry, st)
	if entry.Updated == nil {
		entry.Updated = entry.Published
	}
	return entry, nil
}

// rdfSeq collects the rdf:resource of every rdf:li in an items element.
func rdfSeq(el *xmlsrc.Element) ([]string, error) {
	var refs []string
	for seq, err := range el.Children() {
		if err != nil {
			return nil, err
		}
		if nsOf(seq.Name) != nsRDF || (seq.Name.Local != "Seq" && seq.Name.Local != "Bag") {
			continue
		}
		for li, err := range seq.Children() {
			if err != nil {
				return nil, err
			}
			if li.Name.Local != "li" {
				continue
			}
			if ref := rdfResource(li); ref != "" {
				refs = append(refs, ref)
			}
		}
	}
	return refs, nil
}

// resolveItems keeps the items the channel lists, in document order. When
// the list matches nothing it is treated as unreliable and all items are kept.
func resolveItems(items []rss1Item, seq []string) []model.Entry {
	entries := make([]model.Entry, 0, len(items))

	matched := false
	for _, item := range items {
		if item.about != "" && slices.Contains(seq, item.about) {
			matched = true
			break
		}
	}

	for _, item := range items {
		if matched && !slices.Contains(seq, item.about) {
			continue
		}
		entries = append(entries, item.entry)
	}
	return entries
}

func resolveImage(images []rss1Image, ref string) *model.Image {
	if len(images) == 0 {
		return nil
	}
	for _, img := range images {
		if img.about == ref {
			return img.image
		}
	}
	if ref == "" {
		return images[0].image
	}
	return nil
}

func rdfAbout(el *xmlsrc.Element) string {
	if v := el.AttrNS(rdfNamespace, "about"); v != "" {
		return v
	}
	return el.Attr("about")
}

func rdfResource(el *xmlsrc.Element) string {
	if v := el.AttrNS(rdfNamespace, "resource"); v != "" {
		return v
	}
	return el.Attr("resource")
}
