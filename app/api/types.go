package api

import (
	"context"

	"github.com/novaire/signal-feed/app/database"
	"github.com/novaire/signal-feed/app/feed"
)

type FeedServiceInterface interface {
	Refresh(ctx context.Context) *feed.Feed
	InspectTimeline(ctx context.Context, handle string) *feed.TimelineDiagnostic
}

var _ FeedServiceInterface = (*feed.Service)(nil)

type Handler struct {
	service   FeedServiceInterface
	snapshots database.SnapshotRepository
}
