// Package service is the gamification orchestrator. It loads a user's stats
// snapshot, folds awards through the ledger, persists the result as absolute
// values, and fans out notifications, audit events, and metrics.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bisaathi/internal/gamify/catalog"
	"bisaathi/internal/gamify/ledger"
	"bisaathi/internal/gamify/models"
	"bisaathi/internal/gamify/rules"
	"bisaathi/internal/platform/metrics"
	"bisaathi/internal/verify"
	id "bisaathi/pkg/domain"
	dErrors "bisaathi/pkg/domain-errors"
	"bisaathi/pkg/platform/audit"
	"bisaathi/pkg/platform/sentinel"
)

// SnapshotStore persists per-user stats snapshots with absolute-value writes.
type SnapshotStore interface {
	Get(ctx context.Context, userID id.UserID) (models.StatsSnapshot, error)
	Set(ctx context.Context, userID id.UserID, snap models.StatsSnapshot) error
}

// NotificationStore records pending reward notices for later display.
type NotificationStore interface {
	Append(ctx context.Context, userID id.UserID, n models.Notification) error
	List(ctx context.Context, userID id.UserID) ([]models.Notification, error)
	MarkAllSeen(ctx context.Context, userID id.UserID) error
}

// LeaderboardRecorder mirrors score changes into the ranking cache.
type LeaderboardRecorder interface {
	Record(ctx context.Context, userID id.UserID, score int) error
}

// AuditPublisher emits audit events for points-granting operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	snapshots     SnapshotStore
	notifications NotificationStore
	leaderboard   LeaderboardRecorder
	auditor       AuditPublisher
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func WithLeaderboard(recorder LeaderboardRecorder) Option {
	return func(s *Service) { s.leaderboard = recorder }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(snapshots SnapshotStore, notifications NotificationStore, opts ...Option) (*Service, error) {
	if snapshots == nil {
		return nil, errors.New("snapshot store is required")
	}
	if notifications == nil {
		return nil, errors.New("notification store is required")
	}

	svc := &Service{
		snapshots:     snapshots,
		notifications: notifications,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Progress bundles what a recording operation changed, for the response body.
type Progress struct {
	Snapshot  models.StatsSnapshot `json:"snapshot"`
	Awards    []models.AwardEntry  `json:"awards"`
	NewBadges []models.BadgeID     `json:"new_badges"`
	Role      models.RoleTier      `json:"role"`
}

// RecordVerification credits one registry lookup against the user's ledger.
// The award batch is selected from the snapshot as stored, not from anything
// the client claims, so replayed requests cannot inflate milestone bonuses
// beyond rerunning the same accumulation.
func (s *Service) RecordVerification(ctx context.Context, userID id.UserID, outcome verify.Outcome) (Progress, error) {
	prev, err := s.load(ctx, userID)
	if err != nil {
		return Progress{}, err
	}

	awards := catalog.AwardsForVerification(prev, outcome)
	flags := models.ActionFlags{IsViolation: outcome.IsViolation()}
	next, newBadges := ledger.Accumulate(prev, awards, flags)

	if err := s.commit(ctx, userID, next); err != nil {
		return Progress{}, err
	}

	s.notify(ctx, userID, awards)
	s.emitAudit(ctx, audit.Event{
		UserID: userID,
		Action: string(audit.EventVerificationRecorded),
		Points: next.Score - prev.Score,
		Reason: string(outcome),
	})
	if s.metrics != nil {
		s.metrics.ScansRecorded.Inc()
		if flags.IsViolation {
			s.metrics.ViolationsCaught.Inc()
		}
		s.metrics.AddPoints(next.Score - prev.Score)
	}

	return Progress{Snapshot: next, Awards: awards, NewBadges: newBadges, Role: rules.RoleForScore(next.Score)}, nil
}

// RecordComplaintFiling credits a complaint submission. It does not touch the
// scan counter; complaint counters and the filing awards only.
func (s *Service) RecordComplaintFiling(ctx context.Context, userID id.UserID) (Progress, error) {
	prev, err := s.load(ctx, userID)
	if err != nil {
		return Progress{}, err
	}

	awards := catalog.AwardsForComplaint(prev)
	next, newBadges := ledger.Accumulate(prev, awards, models.ActionFlags{IsComplaint: true})

	if err := s.commit(ctx, userID, next); err != nil {
		return Progress{}, err
	}

	s.notify(ctx, userID, awards)
	s.emitAudit(ctx, audit.Event{
		UserID: userID,
		Action: string(audit.EventComplaintSubmitted),
		Points: next.Score - prev.Score,
	})
	if s.metrics != nil {
		s.metrics.AddPoints(next.Score - prev.Score)
	}

	return Progress{Snapshot: next, Awards: awards, NewBadges: newBadges, Role: rules.RoleForScore(next.Score)}, nil
}

// RecordResolutionBonus pays the one-shot bonus when an owned complaint is
// first resolved. The caller holds the idempotence guard (the complaint row's
// points_awarded flag); this method only applies the snapshot effects. It runs
// inside the caller's transaction when one is in context, so a failed persist
// rolls back together with the complaint row.
func (s *Service) RecordResolutionBonus(ctx context.Context, userID id.UserID) (models.StatsSnapshot, error) {
	prev, err := s.load(ctx, userID)
	if err != nil {
		return models.StatsSnapshot{}, err
	}

	award := catalog.Award(models.AwardComplaintResolvedBonus)
	next := prev.Clone()
	next.Score += award.Points
	next.ComplaintsVerified++
	if !next.HasBadge(models.BadgeBISVerified) {
		next.Badges = append(next.Badges, models.BadgeBISVerified)
	}

	if err := s.commit(ctx, userID, next); err != nil {
		return models.StatsSnapshot{}, err
	}

	s.notify(ctx, userID, []models.AwardEntry{award})
	s.emitAudit(ctx, audit.Event{
		UserID: userID,
		Action: string(audit.EventResolutionBonusAwarded),
		Points: award.Points,
	})
	if s.metrics != nil {
		s.metrics.ResolutionBonuses.Inc()
		s.metrics.AddPoints(award.Points)
	}

	return next, nil
}

// MergeGuest folds locally accumulated guest progress into the account. The
// merge is single-shot: the caller must discard the guest snapshot only after
// this returns nil, and must not retry with mutated guest state. Guest
// snapshots are client supplied; negative counters are rejected so a merge can
// only ever add to the account.
func (s *Service) MergeGuest(ctx context.Context, userID id.UserID, guest models.StatsSnapshot) (models.StatsSnapshot, error) {
	if guest.HasNegativeCounters() {
		return models.StatsSnapshot{}, dErrors.New(dErrors.CodeValidation, "guest snapshot counters must not be negative")
	}

	account, err := s.load(ctx, userID)
	if err != nil {
		return models.StatsSnapshot{}, err
	}

	merged := ledger.Merge(account, guest)
	if guest.IsZero() {
		return merged, nil
	}

	if err := s.commit(ctx, userID, merged); err != nil {
		return models.StatsSnapshot{}, err
	}

	s.emitAudit(ctx, audit.Event{
		UserID: userID,
		Action: string(audit.EventGuestMergeApplied),
		Points: guest.Score,
	})
	if s.metrics != nil {
		s.metrics.GuestMerges.Inc()
	}

	return merged, nil
}

// Stats returns the user's current snapshot with the derived role tier.
func (s *Service) Stats(ctx context.Context, userID id.UserID) (models.StatsSnapshot, models.RoleTier, error) {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return models.StatsSnapshot{}, models.RoleTier{}, err
	}
	return snap, rules.RoleForScore(snap.Score), nil
}

// Notifications lists pending reward notices.
func (s *Service) Notifications(ctx context.Context, userID id.UserID) ([]models.Notification, error) {
	out, err := s.notifications.List(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return out, nil
}

// MarkNotificationsSeen flips every pending notice to seen.
func (s *Service) MarkNotificationsSeen(ctx context.Context, userID id.UserID) error {
	if err := s.notifications.MarkAllSeen(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications seen")
	}
	return nil
}

func (s *Service) load(ctx context.Context, userID id.UserID) (models.StatsSnapshot, error) {
	snap, err := s.snapshots.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.StatsSnapshot{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return models.StatsSnapshot{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load snapshot")
	}
	return snap, nil
}

func (s *Service) commit(ctx context.Context, userID id.UserID, snap models.StatsSnapshot) error {
	if err := s.snapshots.Set(ctx, userID, snap); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist snapshot")
	}
	if s.leaderboard != nil {
		if err := s.leaderboard.Record(ctx, userID, snap.Score); err != nil {
			s.logger.WarnContext(ctx, "failed to update leaderboard", "user_id", userID.String(), "error", err)
		}
	}
	return nil
}

// notify records one notice per award entry, best effort.
func (s *Service) notify(ctx context.Context, userID id.UserID, awards []models.AwardEntry) {
	now := time.Now()
	for _, a := range awards {
		n := models.Notification{Message: a.Reason, Points: a.Points, CreatedAt: now}
		if err := s.notifications.Append(ctx, userID, n); err != nil {
			s.logger.WarnContext(ctx, "failed to append notification", "user_id", userID.String(), "error", err)
		}
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
