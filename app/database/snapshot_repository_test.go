package database

import (
	"testing"
	"time"

	"github.com/novaire/signal-feed/app/feed"
)

func setupTestRepository(t *testing.T) SnapshotRepository {
	t.Helper()

	db, err := NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewSnapshotRepository(db)
}

func testFeed() *feed.Feed {
	avatar := "https://pbs.twimg.com/profile_images/1/avatar.jpg"
	created := time.Date(2026, 2, 16, 9, 30, 0, 0, time.UTC)

	return &feed.Feed{
		OK:                true,
		Count:             2,
		AccountsWithPosts: 2,
		FetchedAt:         time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC),
		Errors: []feed.FetchError{
			{Username: "unrollthread", Reason: feed.ReasonRateLimited},
		},
		Posts: []feed.Post{
			{
				ID:          "1890000000000000001",
				Text:        "gold just hit a new all-time high",
				Author:      "zerohedge",
				Handle:      "zerohedge",
				CreatedAt:   created,
				CreatedAtMs: created.UnixMilli(),
				Likes:       1200,
				Retweets:    340,
				URL:         "https://x.com/zerohedge/status/1890000000000000001",
				Avatar:      &avatar,
			},
			{
				ID:          "1890000000000000002",
				Text:        "skin in the game",
				Author:      "Nassim Nicholas Taleb",
				Handle:      "nntaleb",
				CreatedAt:   created.Add(-time.Hour),
				CreatedAtMs: created.Add(-time.Hour).UnixMilli(),
				URL:         "https://x.com/nntaleb/status/1890000000000000002",
			},
		},
	}
}

func TestSnapshotRepository_EmptyDatabase(t *testing.T) {
	repo := setupTestRepository(t)

	f, err := repo.GetSnapshot()
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if f != nil {
		t.Error("Expected nil feed before the first refresh")
	}
}

func TestSnapshotRepository_SaveAndGet(t *testing.T) {
	repo := setupTestRepository(t)
	saved := testFeed()

	if err := repo.SaveSnapshot(saved); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, err := repo.GetSnapshot()
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected a feed, got nil")
	}

	if !got.OK {
		t.Error("Expected ok true")
	}
	if got.Count != 2 {
		t.Errorf("Expected count 2, got %d", got.Count)
	}
	if got.AccountsWithPosts != 2 {
		t.Errorf("Expected 2 accounts with posts, got %d", got.AccountsWithPosts)
	}
	if !got.FetchedAt.Equal(saved.FetchedAt) {
		t.Errorf("Expected fetchedAt %v, got %v", saved.FetchedAt, got.FetchedAt)
	}

	if len(got.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(got.Errors))
	}
	if got.Errors[0].Username != "unrollthread" || got.Errors[0].Reason != feed.ReasonRateLimited {
		t.Errorf("Unexpected error entry: %+v", got.Errors[0])
	}

	if len(got.Posts) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(got.Posts))
	}

	first := got.Posts[0]
	want := saved.Posts[0]
	if first.ID != want.ID || first.Text != want.Text || first.Handle != want.Handle {
		t.Errorf("First post mismatch: %+v", first)
	}
	if first.Likes != 1200 || first.Retweets != 340 {
		t.Errorf("Engagement counts lost: likes=%d retweets=%d", first.Likes, first.Retweets)
	}
	if first.CreatedAtMs != want.CreatedAtMs || !first.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("Timestamps lost: %v / %d", first.CreatedAt, first.CreatedAtMs)
	}
	if first.Avatar == nil || *first.Avatar != *want.Avatar {
		t.Error("Avatar URL lost")
	}

	if got.Posts[1].Avatar != nil {
		t.Error("Expected nil avatar for the second post")
	}
}

func TestSnapshotRepository_SaveReplacesPrevious(t *testing.T) {
	repo := setupTestRepository(t)

	if err := repo.SaveSnapshot(testFeed()); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	replacement := testFeed()
	replacement.Posts = replacement.Posts[:1]
	replacement.Count = 1
	replacement.AccountsWithPosts = 1
	replacement.Errors = []feed.FetchError{}

	if err := repo.SaveSnapshot(replacement); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, err := repo.GetSnapshot()
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if len(got.Posts) != 1 {
		t.Errorf("Expected 1 post after replacement, got %d", len(got.Posts))
	}
	if len(got.Errors) != 0 {
		t.Errorf("Expected no errors after replacement, got %d", len(got.Errors))
	}
}

func TestSnapshotRepository_PreservesOrder(t *testing.T) {
	repo := setupTestRepository(t)

	f := testFeed()
	if err := repo.SaveSnapshot(f); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, err := repo.GetSnapshot()
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	for i, post := range got.Posts {
		if post.ID != f.Posts[i].ID {
			t.Errorf("Post %d out of order: got '%s', want '%s'", i, post.ID, f.Posts[i].ID)
		}
	}
}
