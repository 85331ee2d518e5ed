package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/novaire/signal-feed/app/feed"
)

type snapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// SaveSnapshot replaces the stored feed in one transaction.
func (r *snapshotRepository) SaveSnapshot(f *feed.Feed) error {
	errorsJSON, err := json.Marshal(f.Errors)
	if err != nil {
		return fmt.Errorf("failed to encode errors: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM snapshot_posts"); err != nil {
		return fmt.Errorf("failed to clear snapshot posts: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO snapshots (id, fetched_at, accounts_with_posts, errors)
		VALUES (1, ?, ?, ?)
	`, f.FetchedAt.UTC().Format(time.RFC3339), f.AccountsWithPosts, string(errorsJSON))
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO snapshot_posts (position, post_id, text, author, handle,
			created_at, created_at_ms, likes, retweets, url, avatar)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare post insert: %w", err)
	}
	defer stmt.Close()

	for i, post := range f.Posts {
		avatar := sql.NullString{}
		if post.Avatar != nil {
			avatar = sql.NullString{String: *post.Avatar, Valid: true}
		}

		_, err := stmt.Exec(i, post.ID, post.Text, post.Author, post.Handle,
			post.CreatedAt.UTC().Format(time.RFC3339), post.CreatedAtMs,
			post.Likes, post.Retweets, post.URL, avatar)
		if err != nil {
			return fmt.Errorf("failed to insert post %s: %w", post.ID, err)
		}
	}

	return tx.Commit()
}

// GetSnapshot returns the stored feed, or nil when no refresh has succeeded
// yet.
func (r *snapshotRepository) GetSnapshot() (*feed.Feed, error) {
	var fetchedAt string
	var accountsWithPosts int
	var errorsJSON string

	err := r.db.QueryRow(`
		SELECT fetched_at, accounts_with_posts, errors FROM snapshots WHERE id = 1
	`).Scan(&fetchedAt, &accountsWithPosts, &errorsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	f := &feed.Feed{
		OK:                true,
		AccountsWithPosts: accountsWithPosts,
		Errors:            []feed.FetchError{},
		Posts:             []feed.Post{},
	}

	if f.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot timestamp: %w", err)
	}
	if err := json.Unmarshal([]byte(errorsJSON), &f.Errors); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot errors: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT post_id, text, author, handle, created_at, created_at_ms,
			likes, retweets, url, avatar
		FROM snapshot_posts ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var post feed.Post
		var createdAt string
		var avatar sql.NullString

		err := rows.Scan(&post.ID, &post.Text, &post.Author, &post.Handle,
			&createdAt, &post.CreatedAtMs, &post.Likes, &post.Retweets,
			&post.URL, &avatar)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot post: %w", err)
		}

		if post.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse post timestamp: %w", err)
		}
		if avatar.Valid {
			avatarURL := avatar.String
			post.Avatar = &avatarURL
		}

		f.Posts = append(f.Posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot posts: %w", err)
	}

	f.Count = len(f.Posts)
	return f, nil
}
