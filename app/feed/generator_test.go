package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/feed-norm/app/model"
	"github.com/lysyi3m/feed-norm/app/parser"
)

func sampleFeed() *model.Feed {
	published := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2023, 7, 3, 12, 0, 0, 0, time.UTC)
	length := uint64(1024)

	return &model.Feed{
		FeedType:    model.FeedTypeAtom,
		ID:          "urn:feed",
		Title:       model.Text{ContentType: model.TextPlain, Value: "Test Feed"},
		Updated:     &updated,
		Description: &model.Text{ContentType: model.TextPlain, Value: "Feed & friends"},
		Links:       []model.Link{{Href: "https://example.com", Rel: "alternate"}},
		Language:    "en-US",
		Logo:        &model.Image{URI: "https://example.com/logo.png"},
		Entries: []model.Entry{
			{
				ID:        "https://example.com/item1",
				Title:     &model.Text{ContentType: model.TextPlain, Value: "Test Item 1"},
				Links:     []model.Link{{Href: "https://example.com/item1", Rel: "alternate"}, {Href: "https://example.com/a.mp3", Rel: "enclosure", MediaType: "audio/mpeg", Length: &length}},
				Summary:   &model.Text{ContentType: model.TextHTML, Value: "<p>Summary</p>"},
				Content:   &model.Content{Body: "<p>Full content]]> with marker</p>", ContentType: model.MimeTextHTML},
				Published: &published,
				Authors:   []model.Person{{Name: "Test Author", Email: "test@example.com"}, {Name: "Name Only"}},
				Categories: []model.Category{
					{Term: "Technology"},
					{Term: "Programming"},
				},
			},
			{
				ID:    "urn:item2",
				Title: &model.Text{ContentType: model.TextPlain, Value: "Test Item 2"},
			},
		},
	}
}

func TestGenerateRSS(t *testing.T) {
	generator := NewGenerator("1.2.3")

	rss, err := generator.Run(sampleFeed(), "https://norm.example.com/feeds/urn:feed/rss")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<rss version="2.0"`,
		`<title>Test Feed</title>`,
		`<link>https://example.com</link>`,
		`<description>Feed &amp; friends</description>`,
		`<atom:link href="https://norm.example.com/feeds/urn:feed/rss" rel="self" type="application/rss+xml" />`,
		`<lastBuildDate>Mon, 03 Jul 2023 12:00:00 +0000</lastBuildDate>`,
		`<generator>feed-norm/1.2.3</generator>`,
		`<language>en-US</language>`,
		`<url>https://example.com/logo.png</url>`,
		`<guid isPermaLink="true">https://example.com/item1</guid>`,
		`<guid isPermaLink="false">urn:item2</guid>`,
		`<description>&lt;p&gt;Summary&lt;/p&gt;</description>`,
		`<pubDate>Mon, 03 Jul 2023 10:00:00 +0000</pubDate>`,
		`<author>test@example.com (Test Author)</author>`,
		`<dc:creator>Name Only</dc:creator>`,
		`<category>Technology</category>`,
		`<enclosure url="https://example.com/a.mp3" length="1024" type="audio/mpeg" />`,
		`<description>No description available</description>`,
	}

	for _, s := range expected {
		if !strings.Contains(rss, s) {
			t.Errorf("RSS should contain %s", s)
		}
	}
}

func TestGenerateRSSRoundTrip(t *testing.T) {
	generator := NewGenerator("test")

	rss, err := generator.Run(sampleFeed(), "")
	if err != nil {
		t.Fatal(err)
	}

	feed, err := parser.Parse(strings.NewReader(rss))
	if err != nil {
		t.Fatalf("Expected generated RSS to parse, got: %v", err)
	}

	if feed.FeedType != model.FeedTypeRSS2 {
		t.Errorf("Expected rss2, got '%s'", feed.FeedType)
	}
	if feed.Title.Value != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got '%s'", feed.Title.Value)
	}
	if len(feed.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(feed.Entries))
	}

	entry := feed.Entries[0]
	if entry.ID != "https://example.com/item1" {
		t.Errorf("Expected guid to round-trip, got '%s'", entry.ID)
	}
	if entry.Content == nil || entry.Content.Body != "<p>Full content]]> with marker</p>" {
		t.Errorf("Expected content to survive CDATA splitting, got %+v", entry.Content)
	}
	if len(entry.Authors) != 2 || entry.Authors[1].Name != "Name Only" {
		t.Errorf("Expected both authors, got %+v", entry.Authors)
	}
	if feed.Entries[1].ID != "urn:item2" {
		t.Errorf("Expected second guid, got '%s'", feed.Entries[1].ID)
	}
}

func TestGenerateRSSNoSelfLink(t *testing.T) {
	generator := NewGenerator("test")

	feed := &model.Feed{ID: "urn:empty", Title: model.Text{Value: "Empty"}, Icon: &model.Image{URI: "https://example.com/icon.ico"}}
	rss, err := generator.Run(feed, "")
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(rss, "atom:link") {
		t.Error("RSS should not contain a self link")
	}
	if !strings.Contains(rss, "<description>Normalized feed urn:empty</description>") {
		t.Error("RSS should contain a fallback description")
	}
	if !strings.Contains(rss, "<url>https://example.com/icon.ico</url>") {
		t.Error("RSS should fall back to the icon as image")
	}
	if strings.Contains(rss, "<item>") {
		t.Error("RSS should contain no items")
	}
}

func TestGenerateRSSNilFeed(t *testing.T) {
	if _, err := NewGenerator("test").Run(nil, ""); err == nil {
		t.Error("Expected error for nil feed")
	}
}
