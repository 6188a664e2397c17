package location

import (
	"encoding/json"
	"math"
)

// CapacityStatus is the derived fullness state of a location.
type CapacityStatus int

const (
	StatusAvailable CapacityStatus = iota
	StatusWarning
	StatusFull
)

// String returns the wire name of the status.
func (s CapacityStatus) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusWarning:
		return "warning"
	case StatusFull:
		return "full"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status as its string name.
func (s CapacityStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Location represents a physical room children are admitted to.
//
// Parent and overflow relations are id references resolved through the
// repository, never embedded pointers.
type Location struct {
	ID                 string  `json:"id"`
	CampusID           string  `json:"campus_id"`
	Name               string  `json:"name"`
	ParentID           *string `json:"parent_id,omitempty"`
	SoftThreshold      *int    `json:"soft_threshold,omitempty"`
	HardThreshold      *int    `json:"hard_threshold,omitempty"`
	ChildRatio         *int    `json:"child_ratio,omitempty"`
	OverflowLocationID *string `json:"overflow_location_id,omitempty"`
	AutoAssignOverflow bool    `json:"auto_assign_overflow"`
	Active             bool    `json:"active"`
	CurrentCount       int     `json:"current_count"`
}

// Snapshot is a point-in-time read of a location's occupancy. Status and
// percentage are derived on every read and never stored.
type Snapshot struct {
	LocationID    string         `json:"location_id"`
	Name          string         `json:"name"`
	CurrentCount  int            `json:"current_count"`
	SoftThreshold *int           `json:"soft_threshold,omitempty"`
	HardThreshold *int           `json:"hard_threshold,omitempty"`
	PercentFull   *int           `json:"percent_full,omitempty"`
	Status        CapacityStatus `json:"status"`
}

// DeriveStatus computes the tri-state capacity status for a count against
// optional soft and hard thresholds. An unset hard threshold means the
// location never reports full; an unset soft threshold means it never warns.
func DeriveStatus(count int, soft, hard *int) CapacityStatus {
	if hard != nil && count >= *hard {
		return StatusFull
	}
	if soft != nil && count >= *soft {
		return StatusWarning
	}
	return StatusAvailable
}

// SnapshotOf derives a Snapshot from a location read.
func SnapshotOf(loc *Location) Snapshot {
	snap := Snapshot{
		LocationID:    loc.ID,
		Name:          loc.Name,
		CurrentCount:  loc.CurrentCount,
		SoftThreshold: loc.SoftThreshold,
		HardThreshold: loc.HardThreshold,
		Status:        DeriveStatus(loc.CurrentCount, loc.SoftThreshold, loc.HardThreshold),
	}
	if loc.SoftThreshold != nil && *loc.SoftThreshold > 0 {
		pct := int(math.Round(float64(loc.CurrentCount) / float64(*loc.SoftThreshold) * 100))
		snap.PercentFull = &pct
	}
	return snap
}
