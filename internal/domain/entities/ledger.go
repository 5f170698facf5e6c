package entities

import "time"

// Ledger action vocabulary. Actions are free-form text in storage but
// writers draw from this closed set.
const (
	LedgerActionScan     = "scan"
	LedgerActionEnqueue  = "queue.enqueue"
	LedgerActionClaim    = "queue.claim"
	LedgerActionComplete = "queue.complete"
	LedgerActionRelease  = "queue.release"
	LedgerActionReassign = "queue.reassign"
	LedgerActionAnnotate = "annotate"
	LedgerActionRelocate = "relocate"
	LedgerActionFlag     = "flag"
	LedgerActionExport   = "export"
	LedgerActionRecover  = "recover"
)

// Well-known ledger actors.
const (
	ActorScanner   = "scanner"
	ActorVerifier  = "verifier-bot"
	ActorProcessor = "processor-bot"
	ActorExporter  = "exporter"
	ActorRecovery  = "recovery-sweep"
	ActorWorkQueue = "workqueue"
)

// LedgerEntry is an immutable audit record. Entries are append-only and
// totally ordered by (created_at, id).
type LedgerEntry struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Ref       ItemRef   `json:"item_ref"`
	Before    string    `json:"before_snapshot,omitempty"`
	After     string    `json:"after_snapshot,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
