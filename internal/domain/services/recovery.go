package services

import (
	"context"
	"fmt"
	"time"

	"github.com/quizhub/curator/internal/domain/entities"
	"github.com/quizhub/curator/internal/domain/ports"
)

// DefaultStaleAfter is how long an item may sit in-progress before the
// recovery sweep treats its claim as abandoned.
const DefaultStaleAfter = 15 * time.Minute

// Recovery force-releases work items whose claiming bot died. This is
// the only timeout-like behavior in the pipeline.
type Recovery struct {
	queue      ports.WorkQueue
	ledger     ports.Ledger
	staleAfter time.Duration
}

// NewRecovery creates a recovery sweep with the given staleness
// threshold; zero means the default.
func NewRecovery(queue ports.WorkQueue, ledger ports.Ledger, staleAfter time.Duration) *Recovery {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Recovery{
		queue:      queue,
		ledger:     ledger,
		staleAfter: staleAfter,
	}
}

// Sweep releases stale claims and returns how many items were touched.
// Items at the attempts cap become permanently failed inside the queue.
func (r *Recovery) Sweep(ctx context.Context) (int, error) {
	released, err := r.queue.ReleaseStale(ctx, r.staleAfter)
	if err != nil {
		return 0, fmt.Errorf("releasing stale claims: %w", err)
	}
	if released == 0 {
		return 0, nil
	}

	entry := &entities.LedgerEntry{
		Actor:  entities.ActorRecovery,
		Action: entities.LedgerActionRecover,
		After:  fmt.Sprintf(`{"released":%d}`, released),
	}
	if err := r.ledger.Record(ctx, entry); err != nil {
		return 0, fmt.Errorf("recording recovery sweep: %w", err)
	}
	return released, nil
}
