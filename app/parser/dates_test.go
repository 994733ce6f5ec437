package parser

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		style    dateStyle
		expected time.Time
	}{
		{"rfc3339", "2005-07-31T12:29:29Z", styleRFC3339, time.Date(2005, 7, 31, 12, 29, 29, 0, time.UTC)},
		{"rfc3339 offset and fraction", "2005-07-31T12:29:29.250+02:00", styleRFC3339, time.Date(2005, 7, 31, 10, 29, 29, 250000000, time.UTC)},
		{"rfc3339 without zone", "2005-07-31T12:29:29", styleRFC3339, time.Date(2005, 7, 31, 12, 29, 29, 0, time.UTC)},
		{"rfc822 gmt", "Sun, 31 Jul 2005 12:29:29 GMT", styleRFC822, time.Date(2005, 7, 31, 12, 29, 29, 0, time.UTC)},
		{"rfc822 named zone", "Sun, 31 Jul 2005 12:29:29 PDT", styleRFC822, time.Date(2005, 7, 31, 19, 29, 29, 0, time.UTC)},
		{"rfc822 numeric zone", "Sun, 31 Jul 2005 12:29:29 -0400", styleRFC822, time.Date(2005, 7, 31, 16, 29, 29, 0, time.UTC)},
		{"rfc822 single digit day", "Mon, 1 Aug 2005 08:00:00 +0000", styleRFC822, time.Date(2005, 8, 1, 8, 0, 0, 0, time.UTC)},
		{"rfc822 no weekday", "31 Jul 2005 12:29:29 +0000", styleRFC822, time.Date(2005, 7, 31, 12, 29, 29, 0, time.UTC)},
		{"rfc822 no seconds", "31 Jul 2005 12:29 +0000", styleRFC822, time.Date(2005, 7, 31, 12, 29, 0, 0, time.UTC)},
		{"rfc822 two digit year", "Sun, 31 Jul 05 12:29:29 +0000", styleRFC822, time.Date(2005, 7, 31, 12, 29, 29, 0, time.UTC)},
		{"rfc822 missing comma", "Sun 31 Jul 2005 12:29:29 GMT", styleRFC822, time.Date(2005, 7, 31, 12, 29, 29, 0, time.UTC)},
		{"rfc822 extra spaces", "Sun,  31 Jul 2005  12:29:29   GMT", styleRFC822, time.Date(2005, 7, 31, 12, 29, 29, 0, time.UTC)},
		{"w3cdtf year", "2005", styleW3CDTF, time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"w3cdtf month", "2005-07", styleW3CDTF, time.Date(2005, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"w3cdtf day", "2005-07-31", styleW3CDTF, time.Date(2005, 7, 31, 0, 0, 0, 0, time.UTC)},
		{"w3cdtf minutes", "2005-07-31T12:29+01:00", styleW3CDTF, time.Date(2005, 7, 31, 11, 29, 0, 0, time.UTC)},
		{"rfc822 in atom", "Sun, 31 Jul 2005 12:29:29 GMT", styleRFC3339, time.Date(2005, 7, 31, 12, 29, 29, 0, time.UTC)},
		{"rfc3339 in rss", "2005-07-31T12:29:29Z", styleRFC822, time.Date(2005, 7, 31, 12, 29, 29, 0, time.UTC)},
		{"rfc822 central european summer time", "Mon, 02 Jan 2006 15:04:05 CEST", styleRFC822, time.Date(2006, 1, 2, 13, 4, 5, 0, time.UTC)},
		{"rfc822 british summer time", "Mon, 02 Jan 2006 15:04:05 BST", styleRFC822, time.Date(2006, 1, 2, 14, 4, 5, 0, time.UTC)},
		{"rfc822 japan", "Mon, 02 Jan 2006 15:04:05 JST", styleRFC822, time.Date(2006, 1, 2, 6, 4, 5, 0, time.UTC)},
		{"general fallback", "2005/07/31 12:29:29", styleRFC822, time.Date(2005, 7, 31, 12, 29, 29, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimestamp(tt.value, tt.style)
			if err != nil {
				t.Fatalf("Expected no error for %q, got: %v", tt.value, err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("Expected %v, got: %v", tt.expected, got)
			}
			if got.Location() != time.UTC {
				t.Errorf("Expected UTC location, got: %v", got.Location())
			}
		})
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	for _, value := range []string{"", "   ", "not a date", "32/13/2005 99:99", "Mon, 1", "1/"} {
		if _, err := parseTimestamp(value, styleRFC822); err == nil {
			t.Errorf("Expected error for %q", value)
		}
	}
}

func TestParseTimestampUnknownZone(t *testing.T) {
	for _, value := range []string{
		"Mon, 02 Jan 2006 15:04:05 XYZT",
		"02 Jan 2006 15:04:05 QQQ",
	} {
		got, err := parseTimestamp(value, styleRFC822)
		if err == nil {
			t.Errorf("Expected error for %q, got: %v", value, got)
		}
	}
}

func TestNormalizeRFC822(t *testing.T) {
	tests := map[string]string{
		"Sun, 31 Jul 2005 12:29:29 EST":        "Sun, 31 Jul 2005 12:29:29 -0500",
		"Sun 31 Jul 2005 12:29:29 GMT":         "Sun, 31 Jul 2005 12:29:29 +0000",
		"Sun, 31 Jul 2005 12:29:29 -0700 (PDT)": "Sun, 31 Jul 2005 12:29:29 -0700",
		"31 Jul 2005 12:29:29 z":               "31 Jul 2005 12:29:29 +0000",
	}

	for input, expected := range tests {
		if got := normalizeRFC822(input); got != expected {
			t.Errorf("normalizeRFC822(%q): expected %q, got %q", input, expected, got)
		}
	}
}
