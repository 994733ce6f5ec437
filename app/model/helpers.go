package model

// PrimaryLink returns the href of the first alternate link, or of the first
// link without a rel, or of the first link at all.
func PrimaryLink(links []Link) string {
	for _, l := range links {
		if l.Rel == "alternate" {
			return l.Href
		}
	}
	for _, l := range links {
		if l.Rel == "" {
			return l.Href
		}
	}
	if len(links) > 0 {
		return links[0].Href
	}
	return ""
}

func (f *Feed) Link() string {
	return PrimaryLink(f.Links)
}

func (e *Entry) Link() string {
	return PrimaryLink(e.Links)
}

// TextValue returns the value of t, or "" when t is nil.
func TextValue(t *Text) string {
	if t == nil {
		return ""
	}
	return t.Value
}
