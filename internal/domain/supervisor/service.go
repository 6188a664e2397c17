package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jmorrell/narthex/internal/domain/audit"
	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/domain/location"
	"github.com/jmorrell/narthex/internal/domain/schedule"
	"github.com/jmorrell/narthex/internal/metrics"
	"github.com/jmorrell/narthex/internal/repository/repoerr"
)

// TokenConfig carries the signing parameters for session tokens.
type TokenConfig struct {
	Issuer     string
	SigningKey string
	SessionTTL time.Duration
}

// Service is the supervisor override channel: PIN login, forced admissions,
// early checkout, code reprint. Every override is audited fail-closed.
type Service struct {
	supervisors Repository
	store       OverrideStore
	people      PersonReader
	attendance  AttendanceReader
	ledger      checkin.CapacityLedger
	codes       checkin.CodeIssuer
	tokens      TokenConfig
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates the supervisor service.
func NewService(
	supervisors Repository,
	store OverrideStore,
	people PersonReader,
	attendance AttendanceReader,
	ledger checkin.CapacityLedger,
	codes checkin.CodeIssuer,
	tokens TokenConfig,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if tokens.SessionTTL <= 0 {
		tokens.SessionTTL = 30 * time.Minute
	}
	return &Service{
		supervisors: supervisors,
		store:       store,
		people:      people,
		attendance:  attendance,
		ledger:      ledger,
		codes:       codes,
		tokens:      tokens,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the service's time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Login exchanges a PIN for a time-boxed session token.
func (s *Service) Login(ctx context.Context, pin string) (*LoginResult, error) {
	if pin == "" {
		return nil, ErrBadPIN
	}
	sup, err := s.supervisors.GetByPINHash(ctx, HashPIN(pin))
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrBadPIN
		}
		return nil, fmt.Errorf("looking up supervisor: %w", err)
	}
	if !sup.Active {
		return nil, ErrBadPIN
	}

	now := s.now()
	sess := &Session{
		ID:           uuid.NewString(),
		SupervisorID: sup.ID,
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.tokens.SessionTTL),
	}
	if err := s.supervisors.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	token, err := IssueToken(sess, s.tokens.Issuer, s.tokens.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	s.logger.Info("supervisor login", "supervisor_id", sup.ID, "session_id", sess.ID)
	return &LoginResult{
		SessionToken: token,
		ExpiresAt:    sess.ExpiresAt,
		Supervisor:   *sup,
	}, nil
}

// Authenticate validates a token against both its signature and the stored
// session row, so a revoked session fails even before the token expires.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims, err := ParseToken(token, s.tokens.SigningKey, s.tokens.Issuer)
	if err != nil {
		return nil, err
	}
	sess, err := s.supervisors.GetSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	now := s.now()
	if sess.RevokedAt != nil || now.After(sess.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Logout revokes the session behind a token. Revoking an already-revoked
// session is a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := ParseToken(token, s.tokens.SigningKey, s.tokens.Issuer)
	if err != nil {
		return err
	}
	if err := s.supervisors.RevokeSession(ctx, claims.ID, s.now()); err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// ForceAdmit seats a person past a hard-capacity rejection. The count still
// increments through the ledger's primitive and the attendance row commits
// atomically with its audit entry.
func (s *Service) ForceAdmit(ctx context.Context, sess *Session, req ForceAdmitRequest) (checkin.Result, error) {
	if req.PersonID == "" || req.LocationID == "" {
		return checkin.Result{}, checkin.ErrInvalidItem
	}

	person, err := s.people.Get(ctx, req.PersonID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return checkin.Result{Outcome: checkin.OutcomeNotFound, Message: "person not found"}, nil
		}
		return checkin.Result{}, fmt.Errorf("loading person: %w", err)
	}

	loc, err := s.ledger.Get(ctx, req.LocationID)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			return checkin.Result{Outcome: checkin.OutcomeNotFound, Message: "location not found"}, nil
		}
		return checkin.Result{}, err
	}

	now := s.now()
	rec := &checkin.Attendance{
		ID:             uuid.NewString(),
		PersonID:       person.ID,
		LocationID:     loc.ID,
		ScheduleID:     req.ScheduleID,
		OccurrenceDate: schedule.DateOf(now),
		StartAt:        now,
	}
	if req.GenerateSecurityCode {
		code, err := s.codes.Issue(ctx, person.CampusID)
		if err != nil {
			return checkin.Result{}, fmt.Errorf("issuing security code: %w", err)
		}
		rec.SecurityCode = &code
	}

	entry := &audit.Entry{
		ID:         uuid.NewString(),
		ActorID:    sess.SupervisorID,
		SessionID:  sess.ID,
		Action:     audit.ActionForceAdmit,
		TargetType: "attendance",
		TargetID:   rec.ID,
		Reason:     req.Reason,
		CreatedAt:  now,
	}
	if err := s.store.ForceAdmit(ctx, rec, entry); err != nil {
		return checkin.Result{}, fmt.Errorf("force admit: %w", err)
	}

	metrics.Overrides.WithLabelValues(string(audit.ActionForceAdmit)).Inc()
	s.logger.Warn("forced admission",
		"supervisor_id", sess.SupervisorID,
		"person_id", person.ID,
		"location_id", loc.ID,
		"attendance_id", rec.ID)

	res := checkin.Result{
		Success:      true,
		Outcome:      checkin.OutcomeAdmitted,
		AttendanceID: rec.ID,
		CheckInTime:  &rec.StartAt,
		Person:       &checkin.PersonSummary{ID: person.ID, FirstName: person.FirstName, LastName: person.LastName},
		Location:     &checkin.LocationSummary{ID: loc.ID, Name: loc.Name},
	}
	if rec.SecurityCode != nil {
		res.SecurityCode = *rec.SecurityCode
	}
	return res, nil
}

// Checkout ends an attendance record early, releasing its seat, atomically
// with the audit entry.
func (s *Service) Checkout(ctx context.Context, sess *Session, attendanceID, reason string) error {
	rec, err := s.attendance.Get(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return checkin.ErrAttendanceNotFound
		}
		return fmt.Errorf("loading attendance: %w", err)
	}
	if rec.EndAt != nil {
		return nil
	}

	now := s.now()
	entry := &audit.Entry{
		ID:         uuid.NewString(),
		ActorID:    sess.SupervisorID,
		SessionID:  sess.ID,
		Action:     audit.ActionForceCheckout,
		TargetType: "attendance",
		TargetID:   attendanceID,
		Reason:     reason,
		CreatedAt:  now,
	}
	if err := s.store.ForceCheckout(ctx, attendanceID, now, entry); err != nil {
		return fmt.Errorf("force checkout: %w", err)
	}
	metrics.Overrides.WithLabelValues(string(audit.ActionForceCheckout)).Inc()
	return nil
}

// ReprintCode returns the security code on an open attendance so the label
// can be printed again. The reprint itself is audited; a failed audit write
// fails the reprint.
func (s *Service) ReprintCode(ctx context.Context, sess *Session, attendanceID string) (string, error) {
	rec, err := s.attendance.Get(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return "", checkin.ErrAttendanceNotFound
		}
		return "", fmt.Errorf("loading attendance: %w", err)
	}
	if rec.SecurityCode == nil {
		return "", ErrNoSecurityCode
	}

	entry := &audit.Entry{
		ID:         uuid.NewString(),
		ActorID:    sess.SupervisorID,
		SessionID:  sess.ID,
		Action:     audit.ActionReprintCode,
		TargetType: "attendance",
		TargetID:   attendanceID,
		CreatedAt:  s.now(),
	}
	if err := s.store.LogReprint(ctx, entry); err != nil {
		return "", fmt.Errorf("auditing reprint: %w", err)
	}
	metrics.Overrides.WithLabelValues(string(audit.ActionReprintCode)).Inc()
	return *rec.SecurityCode, nil
}
