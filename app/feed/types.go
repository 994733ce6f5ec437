package feed

// Profile types

// Profile describes post-parse processing applied to a normalized feed.
type Profile struct {
	Name       string          // Derived from filename (without .yml extension)
	MaxEntries int             `yaml:"max_entries"`
	Filters    []ProfileFilter `yaml:"filters"`
}

type ProfileFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// Rejection records why the filterer dropped an entry.
type Rejection struct {
	EntryID string `json:"entry_id"`
	Reason  string `json:"reason"`
}
