// Package model holds the unified feed representation every source dialect
// is normalized into. Values are built by the parser and not mutated after
// they are returned.
package model

import (
	"time"
)

type FeedType string

const (
	FeedTypeAtom FeedType = "atom"
	FeedTypeRSS0 FeedType = "rss0"
	FeedTypeRSS1 FeedType = "rss1"
	FeedTypeRSS2 FeedType = "rss2"
)

type TextType string

const (
	TextPlain TextType = "text"
	TextHTML  TextType = "html"
	TextXHTML TextType = "xhtml"
)

// MIME types used for content bodies
const (
	MimeTextPlain = "text/plain"
	MimeTextHTML  = "text/html"
	MimeXHTML     = "application/xhtml+xml"
)

type Feed struct {
	FeedType     FeedType   `json:"feed_type" yaml:"feed_type"`
	ID           string     `json:"id" yaml:"id"`
	Title        Text       `json:"title" yaml:"title"`
	Updated      *time.Time `json:"updated,omitempty" yaml:"updated,omitempty"`
	Published    *time.Time `json:"published,omitempty" yaml:"published,omitempty"`
	Authors      []Person   `json:"authors,omitempty" yaml:"authors,omitempty"`
	Description  *Text      `json:"description,omitempty" yaml:"description,omitempty"`
	Links        []Link     `json:"links,omitempty" yaml:"links,omitempty"`
	Categories   []Category `json:"categories,omitempty" yaml:"categories,omitempty"`
	Contributors []Person   `json:"contributors,omitempty" yaml:"contributors,omitempty"`
	Generator    *Generator `json:"generator,omitempty" yaml:"generator,omitempty"`
	Icon         *Image     `json:"icon,omitempty" yaml:"icon,omitempty"`
	Logo         *Image     `json:"logo,omitempty" yaml:"logo,omitempty"`
	Rights       *Text      `json:"rights,omitempty" yaml:"rights,omitempty"`
	Language     string     `json:"language,omitempty" yaml:"language,omitempty"`
	TTL          int        `json:"ttl,omitempty" yaml:"ttl,omitempty"` // minutes
	Entries      []Entry    `json:"entries" yaml:"entries"`
}

type Entry struct {
	ID           string        `json:"id" yaml:"id"`
	Title        *Text         `json:"title,omitempty" yaml:"title,omitempty"`
	Updated      *time.Time    `json:"updated,omitempty" yaml:"updated,omitempty"`
	Published    *time.Time    `json:"published,omitempty" yaml:"published,omitempty"`
	Authors      []Person      `json:"authors,omitempty" yaml:"authors,omitempty"`
	Content      *Content      `json:"content,omitempty" yaml:"content,omitempty"`
	Links        []Link        `json:"links,omitempty" yaml:"links,omitempty"`
	Summary      *Text         `json:"summary,omitempty" yaml:"summary,omitempty"`
	Categories   []Category    `json:"categories,omitempty" yaml:"categories,omitempty"`
	Contributors []Person      `json:"contributors,omitempty" yaml:"contributors,omitempty"`
	Source       string        `json:"source,omitempty" yaml:"source,omitempty"`
	Rights       *Text         `json:"rights,omitempty" yaml:"rights,omitempty"`
	Media        []MediaObject `json:"media,omitempty" yaml:"media,omitempty"`
}

// Text is a human-readable value together with how it should be rendered.
// Value is never parsed for markup.
type Text struct {
	ContentType TextType `json:"content_type" yaml:"content_type"`
	Value       string   `json:"value" yaml:"value"`
}

type Content struct {
	Body        string  `json:"body,omitempty" yaml:"body,omitempty"`
	ContentType string  `json:"content_type" yaml:"content_type"`
	Length      *uint64 `json:"length,omitempty" yaml:"length,omitempty"`
	Src         *Link   `json:"src,omitempty" yaml:"src,omitempty"`
}

type Link struct {
	Href      string  `json:"href" yaml:"href"`
	Rel       string  `json:"rel,omitempty" yaml:"rel,omitempty"`
	MediaType string  `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	HrefLang  string  `json:"href_lang,omitempty" yaml:"href_lang,omitempty"`
	Title     string  `json:"title,omitempty" yaml:"title,omitempty"`
	Length    *uint64 `json:"length,omitempty" yaml:"length,omitempty"`
}

type Person struct {
	Name  string `json:"name" yaml:"name"`
	URI   string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

type Category struct {
	Term   string `json:"term" yaml:"term"`
	Scheme string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

type Image struct {
	URI         string  `json:"uri" yaml:"uri"`
	Title       string  `json:"title,omitempty" yaml:"title,omitempty"`
	Link        *Link   `json:"link,omitempty" yaml:"link,omitempty"`
	Width       *uint32 `json:"width,omitempty" yaml:"width,omitempty"`
	Height      *uint32 `json:"height,omitempty" yaml:"height,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

type Generator struct {
	Content string `json:"content" yaml:"content"`
	URI     string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// MediaObject groups Media RSS / iTunes attachments of an entry.
type MediaObject struct {
	Title       *Text          `json:"title,omitempty" yaml:"title,omitempty"`
	Description *Text          `json:"description,omitempty" yaml:"description,omitempty"`
	Content     []MediaContent `json:"content,omitempty" yaml:"content,omitempty"`
	Thumbnails  []Image        `json:"thumbnails,omitempty" yaml:"thumbnails,omitempty"`
	Duration    *time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

type MediaContent struct {
	URL         string         `json:"url" yaml:"url"`
	ContentType string         `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Medium      string         `json:"medium,omitempty" yaml:"medium,omitempty"`
	Size        *uint64        `json:"size,omitempty" yaml:"size,omitempty"`
	Width       *uint32        `json:"width,omitempty" yaml:"width,omitempty"`
	Height      *uint32        `json:"height,omitempty" yaml:"height,omitempty"`
	Duration    *time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}
