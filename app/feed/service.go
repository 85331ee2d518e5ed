package feed

import (
	"context"

	"github.com/novaire/signal-feed/app/roster"
)

// Service ties the pipeline and aggregator together behind the surface the
// HTTP adapter and the background refresher share.
type Service struct {
	pipeline   *Pipeline
	aggregator *Aggregator
	roster     *roster.Roster
}

func NewService(pipeline *Pipeline, aggregator *Aggregator, r *roster.Roster) *Service {
	return &Service{
		pipeline:   pipeline,
		aggregator: aggregator,
		roster:     r,
	}
}

// Refresh runs the whole roster through the pipeline and aggregates the
// result. It always returns a feed; partial failure is normal operation.
func (s *Service) Refresh(ctx context.Context) *Feed {
	results := s.pipeline.Run(ctx, s.roster.Accounts())
	return s.aggregator.Run(results)
}

// InspectTimeline probes a single account's primary timeline and reports what
// the parser sees, for diagnosing upstream format drift.
func (s *Service) InspectTimeline(ctx context.Context, handle string) *TimelineDiagnostic {
	diag := &TimelineDiagnostic{Handle: handle}

	result := s.pipeline.fetcher.Fetch(ctx, handle, VariantSyndication)
	diag.Status = result.StatusCode
	diag.BodyLength = len(result.Body)
	if !result.OK() {
		diag.Reason = result.Reason
		return diag
	}

	entries, reason := s.pipeline.parser.ParseSyndication(result.Body)
	if reason != "" {
		diag.Reason = reason
		return diag
	}

	diag.OK = true
	diag.HasPayload = true
	diag.EntryCount = len(entries)

	account := roster.Account{Handle: handle}
	for _, entry := range entries {
		if post := s.pipeline.normalizer.FromTweet(entry, account); post != nil {
			diag.FirstPost = post
			break
		}
	}

	return diag
}
