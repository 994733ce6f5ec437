package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/feed-norm/app/database"
	"github.com/lysyi3m/feed-norm/app/feed"
	"github.com/lysyi3m/feed-norm/app/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rss2Doc = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example Channel</title>
    <link>https://example.com/</link>
    <description>News</description>
    <item>
      <title>Go release</title>
      <link>https://example.com/go</link>
      <guid>https://example.com/go</guid>
      <pubDate>Tue, 02 Jan 2024 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Sponsored post</title>
      <link>https://example.com/ad</link>
      <guid>https://example.com/ad</guid>
    </item>
  </channel>
</rss>`

const atomDoc = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Example</title>
  <id>urn:uuid:60a76c80-d399-11d9-b93c-0003939e0af6</id>
  <updated>2003-12-13T18:30:02Z</updated>
  <link href="https://example.org/"/>
  <entry>
    <title>Atom-Powered Robots Run Amok</title>
    <id>urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a</id>
    <updated>2003-12-13T18:30:02Z</updated>
    <link href="https://example.org/2003/12/13/atom03"/>
    <summary>Some text.</summary>
  </entry>
</feed>`

type testEnv struct {
	router *gin.Engine
	repo   *database.FeedRepository
}

func newTestEnv(t *testing.T, apiAccessKey string) *testEnv {
	t.Helper()

	db, err := database.NewConnection(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, _, err = database.RunMigrations(db)
	require.NoError(t, err)

	profilesDir := t.TempDir()
	profile := "filters:\n  - field: title\n    excludes: [sponsored]\n"
	require.NoError(t, os.WriteFile(filepath.Join(profilesDir, "clean.yml"), []byte(profile), 0644))

	profileCache := feed.NewProfileCache(profilesDir)
	require.NoError(t, profileCache.Run())

	repo := database.NewFeedRepository(db)
	handler := NewHandler(parser.NewParser(), repo, profileCache, feed.NewFilterer(), HandlerConfig{
		BaseUrl:      "https://norm.example.com/",
		MaxBodyBytes: 1 << 16,
		Version:      "test",
	})

	return &testEnv{router: NewServer(handler, apiAccessKey), repo: repo}
}

func (e *testEnv) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestParseFeed(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(http.MethodPost, "/parse", atomDoc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[FeedResponse](t, w)
	require.NotNil(t, resp.Feed)
	assert.Equal(t, "atom", string(resp.Feed.FeedType))
	assert.Equal(t, "Atom Example", resp.Feed.Title.Value)
	require.Len(t, resp.Feed.Entries, 1)
	assert.Equal(t, "urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a", resp.Feed.Entries[0].ID)
	assert.Nil(t, resp.Record)
	assert.Equal(t, "1", w.Header().Get("X-Feed-Entries"))

	count, err := env.repo.GetFeedCount(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestParseFeedWithProfileAndStore(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(http.MethodPost, "/parse?profile=clean&store=true", rss2Doc)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[FeedResponse](t, w)
	require.Len(t, resp.Feed.Entries, 1)
	assert.Equal(t, "Go release", resp.Feed.Entries[0].Title.Value)
	require.Len(t, resp.Rejected, 1)
	assert.Equal(t, "https://example.com/ad", resp.Rejected[0].EntryID)
	assert.Equal(t, "1", w.Header().Get("X-Feed-Rejected"))

	require.NotNil(t, resp.Record)
	assert.Equal(t, "clean", resp.Record.Profile)
	assert.Equal(t, 1, resp.Record.EntryCount)
	assert.Equal(t, "/feeds/"+resp.Record.ID, w.Header().Get("Location"))

	w = env.do(http.MethodGet, "/feeds/"+resp.Record.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	stored := decode[FeedResponse](t, w)
	assert.Equal(t, "Example Channel", stored.Feed.Title.Value)
	require.Len(t, stored.Feed.Entries, 1)

	w = env.do(http.MethodGet, "/feeds/"+resp.Record.ID+"/entries", "")
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[struct {
		Entries []database.EntryRecord `json:"entries"`
		Total   int                    `json:"total"`
	}](t, w)
	assert.Equal(t, 1, entries.Total)
	assert.Equal(t, "https://example.com/go", entries.Entries[0].EntryID)
}

func TestParseFeedUnknownProfile(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(http.MethodPost, "/parse?profile=missing", rss2Doc)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParseFeedErrors(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name   string
		body   string
		status int
		kind   string
		field  string
	}{
		{"malformed", "<rss version=\"2.0\"><channel>", http.StatusBadRequest, "xml", ""},
		{"not a feed", "<html><body/></html>", http.StatusUnprocessableEntity, "no_feed_root", ""},
		{"unsupported rss version", `<rss version="3.0"><channel/></rss>`, http.StatusUnprocessableEntity, "no_feed_root", ""},
		{"atom with empty id", `<feed xmlns="http://www.w3.org/2005/Atom"><id> </id><title>t</title></feed>`, http.StatusUnprocessableEntity, "missing_content", "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/parse", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())

			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, tt.kind, resp.Kind)
			assert.Equal(t, tt.field, resp.Field)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestParseFeedTooLarge(t *testing.T) {
	env := newTestEnv(t, "")

	body := `<rss version="2.0"><channel><title>` + strings.Repeat("x", 1<<17) + `</title></channel></rss>`
	w := env.do(http.MethodPost, "/parse", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestGetFeedRSS(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(http.MethodPost, "/parse?store=true", atomDoc)
	require.Equal(t, http.StatusCreated, w.Code)
	record := decode[FeedResponse](t, w).Record
	require.NotNil(t, record)

	w = env.do(http.MethodGet, "/feeds/"+record.ID+"/rss", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "1", w.Header().Get("X-Feed-Items"))

	body := w.Body.String()
	assert.Contains(t, body, `<rss version="2.0"`)
	assert.Contains(t, body, "<title>Atom Example</title>")
	assert.Contains(t, body, `<atom:link href="https://norm.example.com/feeds/`+record.ID+`/rss"`)
	assert.Contains(t, body, "<title>Atom-Powered Robots Run Amok</title>")

	w = env.do(http.MethodGet, "/feeds/missing/rss", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAndDeleteFeeds(t *testing.T) {
	env := newTestEnv(t, "")

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/parse?store=true", atomDoc).Code)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/parse?store=true", rss2Doc).Code)

	w := env.do(http.MethodGet, "/feeds", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Feeds []database.FeedRecord `json:"feeds"`
		Total int                   `json:"total"`
	}](t, w)
	require.Equal(t, 2, list.Total)

	id := list.Feeds[0].ID
	w = env.do(http.MethodDelete, "/feeds/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/feeds/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodDelete, "/feeds/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthentication(t *testing.T) {
	env := newTestEnv(t, "secret")

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/feeds", "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/feeds", "", "X-API-Key", "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/parse", atomDoc).Code)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/feeds", "", "X-API-Key", "secret").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/feeds", "", "Authorization", "Bearer secret").Code)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/feeds/missing/rss", "").Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	health := decode[map[string]interface{}](t, w)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "test", health["version"])
	assert.Equal(t, float64(0), health["feeds"])
	assert.Equal(t, float64(1), health["loaded_profiles"])
}
