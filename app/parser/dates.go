package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

type dateStyle int

const (
	styleRFC3339 dateStyle = iota // Atom
	styleRFC822                   // RSS 0.9x / 2.0
	styleW3CDTF                   // Dublin Core, RSS 1.0
)

var rfc3339Layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

var rfc822Layouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 2006 15:04 MST",
	"Mon, 2 Jan 06 15:04:05 -0700",
	"Mon, 2 Jan 06 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04 -0700",
	"2 Jan 06 15:04:05 -0700",
	"2 Jan 06 15:04 -0700",
	"Mon, 2 January 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05",
	"Mon, 2 Jan 2006",
}

var w3cdtfLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02",
	"2006-01",
	"2006",
}

// Offsets of the zone names RFC 822 allows plus abbreviations common in the
// wild. Go's time.Parse gives an unknown abbreviation a zero offset, so these
// are rewritten to numeric offsets and anything else is rejected.
var rfc822Zones = map[string]string{
	"UT":   "+0000",
	"UTC":  "+0000",
	"GMT":  "+0000",
	"Z":    "+0000",
	"EST":  "-0500",
	"EDT":  "-0400",
	"CST":  "-0600",
	"CDT":  "-0500",
	"MST":  "-0700",
	"MDT":  "-0600",
	"PST":  "-0800",
	"PDT":  "-0700",
	"AKST": "-0900",
	"AKDT": "-0800",
	"HST":  "-1000",
	"AST":  "-0400",
	"ADT":  "-0300",
	"NST":  "-0330",
	"NDT":  "-0230",
	"WET":  "+0000",
	"WEST": "+0100",
	"BST":  "+0100",
	"CET":  "+0100",
	"CEST": "+0200",
	"EET":  "+0200",
	"EEST": "+0300",
	"MSK":  "+0300",
	"IST":  "+0530",
	"SGT":  "+0800",
	"HKT":  "+0800",
	"AWST": "+0800",
	"JST":  "+0900",
	"KST":  "+0900",
	"ACST": "+0930",
	"AEST": "+1000",
	"AEDT": "+1100",
	"NZST": "+1200",
	"NZDT": "+1300",
}

// parseTimestamp tries the layouts of the given style first, then the other
// styles, then a general purpose parser. The result is always in UTC.
func parseTimestamp(value string, style dateStyle) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	var order []dateStyle
	switch style {
	case styleRFC822:
		order = []dateStyle{styleRFC822, styleRFC3339, styleW3CDTF}
	case styleW3CDTF:
		order = []dateStyle{styleW3CDTF, styleRFC3339, styleRFC822}
	default:
		order = []dateStyle{styleRFC3339, styleW3CDTF, styleRFC822}
	}

	for _, s := range order {
		if t, ok := parseStyle(value, s); ok {
			return t.UTC(), nil
		}
	}

	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse timestamp %q: %w", value, err)
	}
	if t.Year() < 1 || t.IsZero() {
		return time.Time{}, fmt.Errorf("unable to parse timestamp %q: no date", value)
	}
	if unknownZone(t) {
		return time.Time{}, fmt.Errorf("unable to parse timestamp %q: unknown zone", value)
	}
	return t.UTC(), nil
}

func parseStyle(value string, style dateStyle) (time.Time, bool) {
	switch style {
	case styleRFC822:
		return tryLayouts(normalizeRFC822(value), rfc822Layouts)
	case styleW3CDTF:
		return tryLayouts(value, w3cdtfLayouts)
	default:
		return tryLayouts(value, rfc3339Layouts)
	}
}

func tryLayouts(value string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil && !unknownZone(t) {
			return t, true
		}
	}
	return time.Time{}, false
}

// unknownZone reports a zone abbreviation time.Parse could not resolve: it
// fabricates a location with that name and a zero offset.
func unknownZone(t time.Time) bool {
	if loc := t.Location(); loc == time.UTC || loc == time.Local {
		return false
	}
	name, offset := t.Zone()
	if offset != 0 || name == "" {
		return false
	}
	switch strings.ToUpper(name) {
	case "UT", "UTC", "GMT", "Z":
		return false
	}
	return true
}

// normalizeRFC822 collapses repeated spaces, drops a trailing comment such
// as "(PST)" and replaces a named zone with its numeric offset.
func normalizeRFC822(value string) string {
	if i := strings.Index(value, "("); i > 0 {
		value = value[:i]
	}

	fields := strings.Fields(value)
	if len(fields) == 0 {
		return value
	}

	last := strings.ToUpper(fields[len(fields)-1])
	if offset, ok := rfc822Zones[last]; ok {
		fields[len(fields)-1] = offset
	}

	// a missing comma after the weekday ("Mon 02 Jan ...")
	if len(fields[0]) == 3 && !strings.HasSuffix(fields[0], ",") && isWeekday(fields[0]) {
		fields[0] += ","
	}

	return strings.Join(fields, " ")
}

func isWeekday(s string) bool {
	switch strings.ToLower(s) {
	case "mon", "tue", "wed", "thu", "fri", "sat", "sun":
		return true
	}
	return false
}

// timestamp parses a date field according to the parser's policy: an
// unparseable value is dropped (nil, nil) unless strict timestamps are on.
func (m *mapper) timestamp(field, value string, style dateStyle) (*time.Time, error) {
	t, err := parseTimestamp(value, style)
	if err != nil {
		if m.strictTimestamps {
			return nil, errInvalidDateTime(field, err)
		}
		m.logger.Debug("Dropping unparseable timestamp", "field", field, "value", value, "error", err)
		return nil, nil
	}
	return &t, nil
}
