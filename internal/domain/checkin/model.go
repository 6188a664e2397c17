package checkin

import (
	"encoding/json"
	"fmt"
	"time"
)

// Outcome is the closed set of admission decision results.
type Outcome int

const (
	// OutcomeAdmitted means a seat was taken and an attendance record created.
	OutcomeAdmitted Outcome = iota
	// OutcomeAlreadyCheckedIn means an open attendance already covered the
	// request; informational, treated as success.
	OutcomeAlreadyCheckedIn
	// OutcomeAtCapacity means the resolved location is at its hard threshold.
	OutcomeAtCapacity
	// OutcomeOutsideSchedule means no check-in window is open.
	OutcomeOutsideSchedule
	// OutcomeNotFound means the person, location, or schedule doesn't exist.
	OutcomeNotFound
	// OutcomeInternalError means the item failed for a non-business reason.
	OutcomeInternalError
)

var outcomeNames = map[Outcome]string{
	OutcomeAdmitted:         "admitted",
	OutcomeAlreadyCheckedIn: "already_checked_in",
	OutcomeAtCapacity:       "at_capacity",
	OutcomeOutsideSchedule:  "outside_schedule",
	OutcomeNotFound:         "not_found",
	OutcomeInternalError:    "internal_error",
}

// String returns the wire name of the outcome.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Success reports whether the outcome seats (or already seated) the person.
func (o Outcome) Success() bool {
	return o == OutcomeAdmitted || o == OutcomeAlreadyCheckedIn
}

// MarshalJSON encodes the outcome as its string name.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes an outcome from its string name.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for outcome, n := range outcomeNames {
		if n == name {
			*o = outcome
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", name)
}

// Person is the slice of person data the check-in core reads. Person
// management itself is external.
type Person struct {
	ID        string `json:"id"`
	CampusID  string `json:"campus_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Active    bool   `json:"active"`
}

// PersonSummary identifies a person on a kiosk-facing result.
type PersonSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LocationSummary identifies the location a result refers to, including the
// overflow room when the request was redirected.
type LocationSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RequestItem is one person/opportunity check-in intent. It is a stateless
// input value; only its resulting attendance or failure persists.
type RequestItem struct {
	PersonID             string     `json:"person_id"`
	LocationID           string     `json:"location_id"`
	ScheduleID           string     `json:"schedule_id,omitempty"`
	OccurrenceDate       *time.Time `json:"occurrence_date,omitempty"`
	DeviceID             string     `json:"device_id,omitempty"`
	IdempotencyKey       string     `json:"idempotency_key,omitempty"`
	GenerateSecurityCode bool       `json:"generate_security_code"`
	Note                 string     `json:"note,omitempty"`
}

// Result is the per-item admission decision.
type Result struct {
	Success      bool             `json:"success"`
	Outcome      Outcome          `json:"outcome"`
	Message      string           `json:"message,omitempty"`
	AttendanceID string           `json:"attendance_id,omitempty"`
	SecurityCode string           `json:"security_code,omitempty"`
	CheckInTime  *time.Time       `json:"check_in_time,omitempty"`
	Person       *PersonSummary   `json:"person,omitempty"`
	Location     *LocationSummary `json:"location,omitempty"`
}

// BatchResult aggregates independent per-item results, order preserved from
// the input.
type BatchResult struct {
	Results      []Result `json:"results"`
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	AllSucceeded bool     `json:"all_succeeded"`
}

// Attendance is one admitted person-occurrence. Checkout sets EndAt; rows are
// never hard-deleted.
type Attendance struct {
	ID             string     `json:"id"`
	PersonID       string     `json:"person_id"`
	LocationID     string     `json:"location_id"`
	ScheduleID     string     `json:"schedule_id"`
	OccurrenceDate time.Time  `json:"occurrence_date"`
	StartAt        time.Time  `json:"start_at"`
	EndAt          *time.Time `json:"end_at,omitempty"`
	SecurityCode   *string    `json:"security_code,omitempty"`
	FirstTime      bool       `json:"first_time"`
	DeviceID       string     `json:"device_id,omitempty"`
	Note           string     `json:"note,omitempty"`
}
