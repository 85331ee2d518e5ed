package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/novaire/signal-feed/app/roster"
)

// Pipeline runs fetch, parse, and normalize per account under bounded
// concurrency: the roster is partitioned into fixed-size batches, accounts
// within a batch run concurrently, and batches are paced to stay under the
// upstream rate limit.
type Pipeline struct {
	fetcher    *Fetcher
	parser     *Parser
	normalizer *Normalizer
	batchSize  int
	pacing     time.Duration
}

func NewPipeline(fetcher *Fetcher, parser *Parser, normalizer *Normalizer,
	batchSize int, pacing time.Duration) *Pipeline {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Pipeline{
		fetcher:    fetcher,
		parser:     parser,
		normalizer: normalizer,
		batchSize:  batchSize,
		pacing:     pacing,
	}
}

// Run executes the per-account pipeline for every roster account and returns
// one result slot per account, in roster order. One account's failure never
// blocks or fails the others.
func (p *Pipeline) Run(ctx context.Context, accounts []roster.Account) []AccountResult {
	results := make([]AccountResult, len(accounts))

	for start := 0; start < len(accounts); start += p.batchSize {
		end := min(start+p.batchSize, len(accounts))

		if err := p.pace(ctx, start > 0); err != nil {
			// Cancellation mid-run: remaining accounts get a result slot with
			// a timeout error rather than being dropped.
			for i := start; i < len(accounts); i++ {
				results[i] = AccountResult{
					Account: accounts[i],
					Err:     &FetchError{Username: accounts[i].Handle, Reason: ReasonTimeout},
				}
			}
			return results
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(slot int, account roster.Account) {
				defer wg.Done()
				results[slot] = p.processAccount(ctx, account)
			}(i, accounts[i])
		}
		wg.Wait()
	}

	return results
}

func (p *Pipeline) pace(ctx context.Context, delay bool) error {
	if !delay || p.pacing <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.pacing):
		return nil
	}
}

// processAccount runs the primary syndication pipeline for one account and
// falls back to the RSS variant when it yields nothing.
func (p *Pipeline) processAccount(ctx context.Context, account roster.Account) AccountResult {
	posts, reason := p.collect(ctx, account, VariantSyndication)

	if len(posts) == 0 {
		fallbackPosts, fallbackReason := p.collect(ctx, account, VariantRSS)
		if len(fallbackPosts) > 0 {
			slog.Debug("RSS fallback engaged", "handle", account.Handle, "posts", len(fallbackPosts))
			posts, reason = fallbackPosts, ""
		} else if reason == "" {
			reason = fallbackReason
		}
	}

	if len(posts) > 0 {
		slog.Debug("Account fetched", "handle", account.Handle, "posts", len(posts))
		return AccountResult{Account: account, Posts: posts}
	}

	if reason == "" {
		reason = ReasonEmptyResult
	}
	slog.Warn("Account yielded no posts", "handle", account.Handle, "reason", reason)
	return AccountResult{
		Account: account,
		Err:     &FetchError{Username: account.Handle, Reason: reason},
	}
}

func (p *Pipeline) collect(ctx context.Context, account roster.Account, variant Variant) ([]Post, string) {
	result := p.fetcher.Fetch(ctx, account.Handle, variant)
	if !result.OK() {
		return nil, result.Reason
	}

	var posts []Post
	switch variant {
	case VariantRSS:
		items, reason := p.parser.ParseRSS(result.Body)
		if reason != "" {
			return nil, reason
		}
		for _, item := range items {
			if post := p.normalizer.FromRSSItem(item, account); post != nil {
				posts = append(posts, *post)
			}
		}
	default:
		entries, reason := p.parser.ParseSyndication(result.Body)
		if reason != "" {
			return nil, reason
		}
		for _, entry := range entries {
			if post := p.normalizer.FromTweet(entry, account); post != nil {
				posts = append(posts, *post)
			}
		}
	}

	return posts, ""
}
