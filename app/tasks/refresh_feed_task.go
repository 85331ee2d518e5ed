package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/novaire/signal-feed/app/database"
	"github.com/novaire/signal-feed/app/feed"
)

// RefreshFeedTask runs the whole roster through the pipeline and stores the
// aggregated feed as the served snapshot. When every account fails the
// previous snapshot is kept instead of being replaced with an empty feed.
type RefreshFeedTask struct {
	Task
	service   *feed.Service
	snapshots database.SnapshotRepository
}

func NewRefreshFeedTask(service *feed.Service, snapshots database.SnapshotRepository) *RefreshFeedTask {
	return &RefreshFeedTask{
		Task:      NewTask(TaskTypeRefreshFeed),
		service:   service,
		snapshots: snapshots,
	}
}

func (t *RefreshFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	f := t.service.Refresh(ctx)

	if len(f.Posts) == 0 {
		if len(f.Errors) > 0 {
			// Total upstream failure: keep serving the previous snapshot and
			// let the scheduler retry.
			return fmt.Errorf("refresh yielded no posts (%d account errors)", len(f.Errors))
		}
		slog.Info("Refresh yielded no fresh posts, keeping previous snapshot")
		return nil
	}

	if err := t.snapshots.SaveSnapshot(f); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	slog.Info("Task completed",
		"type", "RefreshFeed",
		"duration", t.GetDuration(),
		"posts", f.Count,
		"accounts_with_posts", f.AccountsWithPosts,
		"errors", len(f.Errors))

	return nil
}
