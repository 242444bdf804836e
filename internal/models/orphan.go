package models

import (
	"time"

	"github.com/google/uuid"
)

// Orphan kinds: what a failed compensation left behind.
const (
	OrphanIdentity = "identity"
	OrphanTenant   = "tenant"
)

// Orphan records a resource whose compensating delete failed during a
// provisioning rollback. The background reaper retries these out-of-band;
// the caller that triggered the rollback never sees them.
type Orphan struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Kind          string     `json:"kind" db:"kind"`
	Ref           uuid.UUID  `json:"ref" db:"ref"`
	Reason        string     `json:"reason" db:"reason"`
	Attempts      int        `json:"attempts" db:"attempts"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty" db:"last_attempt_at"`
}
