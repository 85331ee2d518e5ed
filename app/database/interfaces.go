package database

import (
	"github.com/novaire/signal-feed/app/feed"
)

// SnapshotRepository persists exactly one feed: the last successful refresh,
// replaced wholesale. Historical posts are never retained.
type SnapshotRepository interface {
	SaveSnapshot(f *feed.Feed) error
	GetSnapshot() (*feed.Feed, error)
}

var _ SnapshotRepository = (*snapshotRepository)(nil)
