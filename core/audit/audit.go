package audit

import (
	"context"
	"time"

	"github.com/segmentio/ksuid"
)

// Action is a namespaced verb describing a privileged mutation, e.g. "user.suspend".
type Action string

const (
	ActionUserSuspend   = Action("user.suspend")
	ActionUserReinstate = Action("user.reinstate")
)

// Entry is one immutable record of a privileged admin action. Entries are
// written exactly once, after the mutation commits, and are never updated or
// deleted by this layer. They keep no foreign-key coupling to their target:
// the record survives target deletion.
type Entry struct {
	ID          string    `json:"id" db:"id"` // ksuid: k-sortable, append-friendly
	ActorID     string    `json:"actor_id" db:"actor_id"`
	Action      Action    `json:"action" db:"action"`
	TargetTable string    `json:"target_table" db:"target_table"`
	TargetID    string    `json:"target_id" db:"target_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC, server-assigned
}

// NewEntry stamps a new entry with a sortable id and the server clock.
func NewEntry(actorID string, action Action, targetTable, targetID string) Entry {
	return Entry{
		ID:          ksuid.New().String(),
		ActorID:     actorID,
		Action:      action,
		TargetTable: targetTable,
		TargetID:    targetID,
		CreatedAt:   time.Now().UTC(),
	}
}

type (
	// Repository appends entries. No read/query API: the log is write-only
	// from this layer's perspective.
	Repository interface {
		AppendEntry(ctx context.Context, entry Entry) error
	}

	// Metrics counts write failures for operational telemetry.
	Metrics interface {
		RecordAuditFailure(action Action)
	}
)
