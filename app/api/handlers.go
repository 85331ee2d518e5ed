package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/novaire/signal-feed/app/database"
)

func NewHandler(service FeedServiceInterface, snapshots database.SnapshotRepository) *Handler {
	return &Handler{
		service:   service,
		snapshots: snapshots,
	}
}

// GetFeed serves the aggregated feed. The stored snapshot is the normal path;
// ?live=1 (or a missing snapshot) forces a synchronous upstream refresh.
func (h *Handler) GetFeed(c *gin.Context) {
	c.Header("Cache-Control", "s-maxage=900, stale-while-revalidate=1800")

	if c.Query("live") != "1" {
		f, err := h.snapshots.GetSnapshot()
		if err != nil {
			slog.Error("Snapshot read failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"ok":    false,
				"error": "failed to load feed snapshot",
				"posts": []any{},
			})
			return
		}
		if f != nil {
			c.JSON(http.StatusOK, f)
			return
		}
	}

	c.JSON(http.StatusOK, h.service.Refresh(c.Request.Context()))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if f, err := h.snapshots.GetSnapshot(); err == nil && f != nil {
		health["snapshot_fetched_at"] = f.FetchedAt.Format(time.RFC3339)
		health["snapshot_posts"] = f.Count
	}

	c.JSON(http.StatusOK, health)
}

// GetTimelineDebug probes one account's upstream timeline, for diagnosing
// payload format drift.
func (h *Handler) GetTimelineDebug(c *gin.Context) {
	handle := c.Query("handle")
	if handle == "" {
		handle = "WatcherGuru"
	}

	c.JSON(http.StatusOK, h.service.InspectTimeline(c.Request.Context(), handle))
}
