package parser

import (
	"github.com/google/uuid"

	"github.com/lysyi3m/feed-norm/app/model"
)

// idNamespace scopes the name-based UUIDs generated for feeds and entries
// that carry no identifier of their own.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:feed-norm:synthesized-id"))

// DefaultID prefers the primary link. Without one it derives a version 5
// UUID from the title and summary, so repeated parses agree.
func DefaultID(links []model.Link, title, summary *model.Text) string {
	if link := model.PrimaryLink(links); link != "" {
		return link
	}

	data := model.TextValue(title) + "\x00" + model.TextValue(summary)
	return "urn:uuid:" + uuid.NewSHA1(idNamespace, []byte(data)).String()
}

// entryID applies the configured generator when an entry has no id.
func (m *mapper) entryID(entry *model.Entry) {
	if entry.ID != "" {
		return
	}
	summary := entry.Summary
	if summary == nil && entry.Content != nil && entry.Content.Body != "" {
		summary = &model.Text{ContentType: model.TextHTML, Value: entry.Content.Body}
	}
	entry.ID = m.idGenerator(entry.Links, entry.Title, summary)
}
