package ingestion

import (
	"context"
	"time"

	"github.com/studium-hq/studium/core"
)

// DefaultStalledThreshold is how old a non-terminal source must be before
// a sweep considers it abandoned.
const DefaultStalledThreshold = 10 * time.Minute

// SweepStalled re-queues sources stuck in a non-terminal status for longer
// than olderThan. This covers records orphaned by a crash between the
// synchronous insert and background completion: stale PENDING sources are
// re-scheduled directly, stale PROCESSING sources are reset to PENDING
// first so the claim transition stays the single entry point.
// Returns the number of sources re-queued.
func (p *Pipeline) SweepStalled(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		olderThan = DefaultStalledThreshold
	}
	cutoff := time.Now().UTC().Add(-olderThan)

	requeued := 0

	pending, err := p.sources.ListSourcesByStatus(ctx, core.StatusPending, cutoff)
	if err != nil {
		return 0, err
	}
	for _, source := range pending {
		p.schedule(source.TenantId, source.Id)
		requeued++
	}

	processing, err := p.sources.ListSourcesByStatus(ctx, core.StatusProcessing, cutoff)
	if err != nil {
		return requeued, err
	}
	for _, source := range processing {
		_, reset, err := p.sources.UpdateSourceIf(ctx, source.TenantId, source.Id, core.StatusProcessing, core.SourcePatch{
			Status: core.StatusPending,
		})
		if err != nil {
			return requeued, err
		}
		if !reset {
			// Finished or deleted since the listing, nothing to do
			continue
		}
		p.schedule(source.TenantId, source.Id)
		requeued++
	}

	if requeued > 0 {
		p.logger.Info("re-queued stalled sources", "count", requeued)
	}

	return requeued, nil
}
