// Package audit records supervisor actions. Every override writes exactly
// one entry; an override whose entry cannot be written does not happen.
package audit

import (
	"context"
	"time"
)

// Action enumerates audited supervisor actions.
type Action string

const (
	ActionForceAdmit    Action = "force_admit"
	ActionForceCheckout Action = "force_checkout"
	ActionReprintCode   Action = "reprint_code"
)

// Entry is one audit trail row.
type Entry struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	SessionID  string    `json:"session_id"`
	Action     Action    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListOptions filters audit listings.
type ListOptions struct {
	ActorID string
	Action  *Action
	Limit   int
	Offset  int
}

// Repository provides append-only audit persistence.
type Repository interface {
	Log(ctx context.Context, entry *Entry) error
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
}
