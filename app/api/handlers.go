package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/feed-norm/app/feed"
	"github.com/lysyi3m/feed-norm/app/parser"
)

type HandlerConfig struct {
	BaseUrl      string
	MaxBodyBytes int64
	Version      string
}

func NewHandler(p ParserInterface, feedRepo FeedRepository, profileCache *feed.ProfileCache,
	filterer *feed.Filterer, config HandlerConfig) *Handler {
	return &Handler{
		parser:       p,
		feedRepo:     feedRepo,
		generator:    feed.NewGenerator(config.Version),
		profileCache: profileCache,
		filterer:     filterer,
		baseUrl:      strings.TrimSuffix(config.BaseUrl, "/"),
		maxBodyBytes: config.MaxBodyBytes,
		version:      config.Version,
	}
}

// ParseFeed normalizes the feed document in the request body. With
// ?profile=<name> the profile's filters are applied; with ?store=true the
// result is saved and its record returned.
func (h *Handler) ParseFeed(c *gin.Context) {
	var profile *feed.Profile
	if name := c.Query("profile"); name != "" {
		p, err := h.profileCache.GetProfile(name)
		if err != nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		profile = p
	}

	store, _ := strconv.ParseBool(c.Query("store"))

	body := c.Request.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, h.maxBodyBytes)
	}

	parsed, err := h.parser.Parse(body)
	if err != nil {
		h.writeParseError(c, err)
		return
	}

	response := FeedResponse{Feed: parsed}
	profileName := ""
	if profile != nil {
		response.Feed, response.Rejected = h.filterer.Run(parsed, profile)
		profileName = profile.Name
	}

	if store {
		record, err := h.feedRepo.SaveFeed(c.Request.Context(), response.Feed, profileName)
		if err != nil {
			slog.Error("Database error", "operation", "save_feed", "feed", parsed.ID, "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
			return
		}
		response.Record = record
		c.Header("Location", "/feeds/"+record.ID)
	}

	c.Header("X-Feed-Entries", strconv.Itoa(len(response.Feed.Entries)))
	c.Header("X-Feed-Rejected", strconv.Itoa(len(response.Rejected)))

	status := http.StatusOK
	if store {
		status = http.StatusCreated
	}
	c.JSON(status, response)
}

func (h *Handler) writeParseError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	var xmlErr *parser.XMLError
	var parseErr *parser.ParseError

	switch {
	case errors.As(err, &maxBytesErr):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "feed document too large"})
	case errors.As(err, &xmlErr):
		slog.Debug("Malformed feed document", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: xmlErr.Error(), Kind: "xml"})
	case errors.As(err, &parseErr):
		slog.Debug("Feed document rejected", "kind", parseErr.Kind.String(), "error", err)
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:    parseErr.Error(),
			Kind:     parseErr.Kind.String(),
			Field:    parseErr.Field,
			MimeType: parseErr.MimeType,
		})
	default:
		slog.Error("Feed parse error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to parse feed"})
	}
}

func (h *Handler) ListFeeds(c *gin.Context) {
	feeds, err := h.feedRepo.ListFeeds(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_feeds", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) GetFeed(c *gin.Context) {
	id := c.Param("id")

	record, err := h.feedRepo.GetFeed(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Feed not found"})
		return
	}

	stored, err := record.Feed()
	if err != nil {
		slog.Error("Stored feed is unreadable", "feed", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Stored feed is unreadable"})
		return
	}

	c.JSON(http.StatusOK, FeedResponse{Feed: stored, Record: record})
}

func (h *Handler) ListEntries(c *gin.Context) {
	id := c.Param("id")

	record, err := h.feedRepo.GetFeed(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Feed not found"})
		return
	}

	entries, err := h.feedRepo.ListEntries(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "list_entries", "feed", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}

// GetFeedRSS renders a stored feed as RSS 2.0, whatever its source dialect.
func (h *Handler) GetFeedRSS(c *gin.Context) {
	id := c.Param("id")

	record, err := h.feedRepo.GetFeed(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if record == nil {
		c.Status(http.StatusNotFound)
		return
	}

	stored, err := record.Feed()
	if err != nil {
		slog.Error("Stored feed is unreadable", "feed", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	selfLink := ""
	if h.baseUrl != "" {
		selfLink = h.baseUrl + "/feeds/" + id + "/rss"
	}

	rss, err := h.generator.Run(stored, selfLink)
	if err != nil {
		slog.Error("RSS generation error", "feed", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(stored.Entries)))
	c.Header("X-Last-Updated", record.UpdatedAt.Format(time.RFC3339))

	c.String(http.StatusOK, rss)
}

func (h *Handler) DeleteFeed(c *gin.Context) {
	id := c.Param("id")

	deleted, err := h.feedRepo.DeleteFeed(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "delete_feed", "feed", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Feed not found"})
		return
	}

	slog.Info("Feed deleted", "feed", id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(c.Request.Context()); err == nil {
		health["feeds"] = feedCount
	} else {
		slog.Error("Database error", "operation", "get_feed_count", "error", err)
		health["status"] = "degraded"
	}

	health["loaded_profiles"] = h.profileCache.GetProfileCount()

	c.JSON(http.StatusOK, health)
}
