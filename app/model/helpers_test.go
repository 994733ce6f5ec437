package model

import "testing"

func TestPrimaryLink(t *testing.T) {
	tests := []struct {
		name     string
		links    []Link
		expected string
	}{
		{"empty", nil, ""},
		{"alternate wins", []Link{{Href: "a", Rel: "self"}, {Href: "b"}, {Href: "c", Rel: "alternate"}}, "c"},
		{"no rel before other rels", []Link{{Href: "a", Rel: "self"}, {Href: "b"}}, "b"},
		{"fallback to first", []Link{{Href: "a", Rel: "self"}, {Href: "b", Rel: "enclosure"}}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrimaryLink(tt.links); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestTextValue(t *testing.T) {
	if TextValue(nil) != "" {
		t.Error("Expected empty string for nil text")
	}
	if TextValue(&Text{ContentType: TextHTML, Value: "<b>x</b>"}) != "<b>x</b>" {
		t.Error("Expected value to pass through unmodified")
	}
}
