package supervisor

import "time"

// Supervisor is a staff member allowed to override admission rules.
type Supervisor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	PINHash string `json:"-"`
	Active  bool   `json:"active"`
}

// Session is one time-boxed supervisor login. Capacity bypasses and
// checkouts reference the session id in the audit trail; revoking the row
// kills the session even if its token has not expired.
type Session struct {
	ID           string     `json:"id"`
	SupervisorID string     `json:"supervisor_id"`
	IssuedAt     time.Time  `json:"issued_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}

// LoginResult is returned to the kiosk after a successful PIN login.
type LoginResult struct {
	SessionToken string     `json:"session_token"`
	ExpiresAt    time.Time  `json:"expires_at"`
	Supervisor   Supervisor `json:"supervisor"`
}

// ForceAdmitRequest describes a capacity bypass.
type ForceAdmitRequest struct {
	PersonID             string `json:"person_id"`
	LocationID           string `json:"location_id"`
	ScheduleID           string `json:"schedule_id"`
	GenerateSecurityCode bool   `json:"generate_security_code"`
	Reason               string `json:"reason"`
}
