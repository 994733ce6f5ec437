package feed

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/feed-norm/app/model"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run returns a copy of feed holding only the entries that pass the
// profile's filters, in their original order, cut to MaxEntries. The input
// feed is not modified.
func (f *Filterer) Run(feed *model.Feed, profile *Profile) (*model.Feed, []Rejection) {
	out := *feed
	out.Entries = make([]model.Entry, 0, len(feed.Entries))

	var rejected []Rejection
	for _, entry := range feed.Entries {
		if isFiltered, reason := f.applyFilters(entry, profile.Filters); isFiltered {
			rejected = append(rejected, Rejection{EntryID: entry.ID, Reason: reason})
			continue
		}
		if profile.MaxEntries > 0 && len(out.Entries) >= profile.MaxEntries {
			rejected = append(rejected, Rejection{EntryID: entry.ID, Reason: "Exceeds max entries"})
			continue
		}
		out.Entries = append(out.Entries, entry)
	}

	if len(rejected) > 0 {
		slog.Debug("Entries filtered", "profile", profile.Name, "kept", len(out.Entries), "rejected", len(rejected))
	}

	return &out, rejected
}

func (f *Filterer) applyFilters(entry model.Entry, filters []ProfileFilter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(entry, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(entry model.Entry, field string) string {
	switch field {
	case "title":
		return model.TextValue(entry.Title)
	case "summary":
		return model.TextValue(entry.Summary)
	case "content":
		if entry.Content == nil {
			return ""
		}
		return entry.Content.Body
	case "authors":
		names := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			names = append(names, strings.TrimSpace(a.Name+" "+a.Email))
		}
		return strings.Join(names, " ")
	case "link":
		return entry.Link()
	case "categories":
		terms := make([]string, 0, len(entry.Categories))
		for _, c := range entry.Categories {
			terms = append(terms, c.Term)
		}
		return strings.Join(terms, " ")
	default:
		return ""
	}
}
