package entities

import "time"

// WorkStatus is the lifecycle state of a work item.
// pending -> in-progress -> {done, failed}; release is the only
// backward edge (in-progress -> pending).
type WorkStatus string

const (
	StatusPending    WorkStatus = "pending"
	StatusInProgress WorkStatus = "in-progress"
	StatusDone       WorkStatus = "done"
	StatusFailed     WorkStatus = "failed"
)

// Terminal reports whether no further transitions are permitted.
func (s WorkStatus) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// WorkAction is the remediation requested for a work item.
type WorkAction string

const (
	// ActionFixFormat requests an automated format repair.
	ActionFixFormat WorkAction = "fix_format"
	// ActionFlagManualReview parks an item for operator triage; the
	// pipeline never fabricates missing content.
	ActionFlagManualReview WorkAction = "flag_manual_review"
)

// ItemTypeQuestion is the only item type the queue currently carries.
const ItemTypeQuestion = "question"

// WorkItem is one unit of remediation work referencing a single content
// record. At most one item per ref may be pending or in-progress.
type WorkItem struct {
	ID             string     `json:"id"`
	ItemType       string     `json:"item_type"`
	Ref            ItemRef    `json:"item_ref"`
	Action         WorkAction `json:"action"`
	Priority       int        `json:"priority"`
	Status         WorkStatus `json:"status"`
	Reason         string     `json:"reason"`
	Classification string     `json:"classification,omitempty"`
	Score          float64    `json:"score,omitempty"`
	Attempts       int        `json:"attempts"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
