package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/feed-norm/app/model"
)

// Generator renders a normalized feed of any source dialect as RSS 2.0.
type Generator struct {
	version string
}

func NewGenerator(version string) *Generator {
	return &Generator{version: version}
}

// Run writes the feed. selfLink, when set, is advertised as the atom:link
// with rel="self".
func (g *Generator) Run(feed *model.Feed, selfLink string) (string, error) {
	if feed == nil {
		return "", fmt.Errorf("feed is nil")
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom" xmlns:dc="http://purl.org/dc/elements/1.1/">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", feed.Title.Value, 4)
	g.writeElement(&buf, "link", feed.Link(), 4)
	description := model.TextValue(feed.Description)
	if description == "" {
		description = fmt.Sprintf("Normalized feed %s", feed.ID)
	}
	g.writeElement(&buf, "description", description, 4)

	if selfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(selfLink)))
	}

	if feed.Published != nil {
		g.writeElement(&buf, "pubDate", feed.Published.Format(time.RFC1123Z), 4)
	}

	g.writeElement(&buf, "lastBuildDate", g.lastBuildDate(feed).Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("feed-norm/%s", g.version), 4)
	g.writeElement(&buf, "language", feed.Language, 4)
	g.writeElement(&buf, "copyright", model.TextValue(feed.Rights), 4)
	if feed.TTL > 0 {
		g.writeElement(&buf, "ttl", fmt.Sprintf("%d", feed.TTL), 4)
	}
	for _, category := range feed.Categories {
		g.writeElement(&buf, "category", category.Term, 4)
	}

	image := feed.Logo
	if image == nil {
		image = feed.Icon
	}
	if image != nil && image.URI != "" {
		buf.WriteString("    <image>\n")
		g.writeElement(&buf, "url", image.URI, 6)
		g.writeElement(&buf, "title", feed.Title.Value, 6)
		g.writeElement(&buf, "link", feed.Link(), 6)
		buf.WriteString("    </image>\n")
	}

	for _, entry := range feed.Entries {
		g.writeItem(&buf, entry)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) lastBuildDate(feed *model.Feed) time.Time {
	if feed.Updated != nil {
		return *feed.Updated
	}
	for _, entry := range feed.Entries {
		if ts := entryTime(entry); ts != nil {
			return *ts
		}
	}
	return time.Now().UTC()
}

func (g *Generator) writeItem(buf *bytes.Buffer, entry model.Entry) {
	buf.WriteString("    <item>\n")

	if entry.ID != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(entry.ID)))
		xml.EscapeText(buf, []byte(entry.ID))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", model.TextValue(entry.Title), 6)

	link := entry.Link()
	g.writeElement(buf, "link", link, 6)

	description := model.TextValue(entry.Summary)
	if description == "" {
		description = "No description available"
	}
	g.writeElement(buf, "description", description, 6)

	if entry.Content != nil && entry.Content.Body != "" && entry.Content.Body != description {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(entry.Content.Body, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	if ts := entryTime(entry); ts != nil {
		g.writeElement(buf, "pubDate", ts.Format(time.RFC1123Z), 6)
	}

	for _, author := range entry.Authors {
		if author.Email != "" {
			g.writeElement(buf, "author", g.formatAuthor(author), 6)
		} else if author.Name != "" {
			g.writeElement(buf, "dc:creator", author.Name, 6)
		}
	}

	for _, category := range entry.Categories {
		g.writeElement(buf, "category", category.Term, 6)
	}

	// RSS 2.0 allows a single enclosure and requires url, length and type
	for _, l := range entry.Links {
		if l.Rel != "enclosure" || l.MediaType == "" {
			continue
		}
		var length uint64
		if l.Length != nil {
			length = *l.Length
		}
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"%d\" type=\"%s\" />\n",
			html.EscapeString(l.Href),
			length,
			html.EscapeString(l.MediaType)))
		break
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) formatAuthor(p model.Person) string {
	if p.Name == "" {
		return p.Email
	}
	return fmt.Sprintf("%s (%s)", p.Email, p.Name)
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// entryTime is the publication time of an entry, or its update time.
func entryTime(entry model.Entry) *time.Time {
	if entry.Published != nil {
		return entry.Published
	}
	return entry.Updated
}
