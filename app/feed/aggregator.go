package feed

import (
	"sort"
	"time"

	"github.com/novaire/signal-feed/app/roster"
)

// Aggregator merges per-account results into one feed: first-wins dedupe by
// post id, tiered freshness filtering, stable recency sort, and truncation.
type Aggregator struct {
	roster       *roster.Roster
	freshWindow  time.Duration
	staleWindow  time.Duration
	maxPosts     int
	perHandleCap int
	now          func() time.Time
}

func NewAggregator(r *roster.Roster, freshWindow, staleWindow time.Duration,
	maxPosts, perHandleCap int) *Aggregator {
	return &Aggregator{
		roster:       r,
		freshWindow:  freshWindow,
		staleWindow:  staleWindow,
		maxPosts:     maxPosts,
		perHandleCap: perHandleCap,
		now:          time.Now,
	}
}

// Run builds the final feed from the pipeline's result slots. Flatten order is
// the scheduler's slot order, which makes dedupe winners deterministic.
func (a *Aggregator) Run(results []AccountResult) *Feed {
	now := a.now()

	errors := make([]FetchError, 0)
	flattened := make([]Post, 0)
	for _, result := range results {
		if result.Err != nil {
			errors = append(errors, *result.Err)
			continue
		}
		flattened = append(flattened, result.Posts...)
	}

	seen := make(map[string]bool)
	posts := make([]Post, 0, len(flattened))
	for _, post := range flattened {
		if seen[post.ID] {
			continue
		}
		seen[post.ID] = true

		if !a.isFresh(post, now) {
			continue
		}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAtMs > posts[j].CreatedAtMs
	})

	if a.perHandleCap > 0 {
		posts = a.balance(posts)
	}

	if len(posts) > a.maxPosts {
		posts = posts[:a.maxPosts]
	}

	handles := make(map[string]bool)
	for _, post := range posts {
		handles[post.Handle] = true
	}

	return &Feed{
		OK:                true,
		Count:             len(posts),
		AccountsWithPosts: len(handles),
		FetchedAt:         now.UTC(),
		Errors:            errors,
		Posts:             posts,
	}
}

// isFresh applies the tiered max-age policy. The boundary is inclusive: a post
// exactly as old as its window is kept. Posts with an epoch-zero timestamp
// (unparseable upstream dates) always fail.
func (a *Aggregator) isFresh(post Post, now time.Time) bool {
	if post.CreatedAtMs <= 0 {
		return false
	}

	window := a.staleWindow
	if a.roster.IsGuaranteedFresh(post.Handle) {
		window = a.freshWindow
	}

	age := now.Sub(time.UnixMilli(post.CreatedAtMs))
	return age <= window
}

// balance caps each handle's share of the feed, then backfills remaining slots
// from the overflow so quiet accounts stay visible next to prolific ones.
// Input and output are both in recency order.
func (a *Aggregator) balance(posts []Post) []Post {
	perHandle := make(map[string]int)
	balanced := make([]Post, 0, min(len(posts), a.maxPosts))
	overflow := make([]Post, 0)

	for _, post := range posts {
		if len(balanced) >= a.maxPosts {
			overflow = append(overflow, post)
			continue
		}
		if perHandle[post.Handle] < a.perHandleCap {
			perHandle[post.Handle]++
			balanced = append(balanced, post)
		} else {
			overflow = append(overflow, post)
		}
	}

	for _, post := range overflow {
		if len(balanced) >= a.maxPosts {
			break
		}
		balanced = append(balanced, post)
	}

	sort.SliceStable(balanced, func(i, j int) bool {
		return balanced[i].CreatedAtMs > balanced[j].CreatedAtMs
	})

	return balanced
}
