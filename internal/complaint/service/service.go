// Package service implements the complaint lifecycle: citizen submission,
// officer triage, and the one-shot resolution bonus. Status transitions and
// the bonus commit atomically; a second resolve succeeds without paying twice.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bisaathi/internal/complaint/models"
	gamifymodels "bisaathi/internal/gamify/models"
	gamifysvc "bisaathi/internal/gamify/service"
	"bisaathi/internal/leaderboard"
	"bisaathi/internal/platform/metrics"
	"bisaathi/internal/verify"
	id "bisaathi/pkg/domain"
	dErrors "bisaathi/pkg/domain-errors"
	"bisaathi/pkg/platform/audit"
	"bisaathi/pkg/platform/sentinel"
)

const tracerName = "bisaathi/complaint"

// Store persists complaints. Implementations honor a transaction carried in
// context so Transition can commit the status write and the bonus claim
// together.
type Store interface {
	Create(ctx context.Context, c *models.Complaint) error
	FindByID(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Complaint, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Complaint, error)
	// UpdateStatus sets the status; empty adminNotes keep the stored notes.
	UpdateStatus(ctx context.Context, complaintID id.ComplaintID, status models.Status, adminNotes string) error
	ClaimResolutionBonus(ctx context.Context, complaintID id.ComplaintID) (bool, error)
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
	CountByDay(ctx context.Context, days int) ([]models.DayCount, error)
	CountResolvedByUser(ctx context.Context) (map[id.UserID]int, error)
}

// Ranking lists users ordered by ledger score. The leaderboard store provides
// it in both deployment modes; top validators ride on the same score order as
// the public leaderboard.
type Ranking interface {
	TopByScore(ctx context.Context, limit int) ([]leaderboard.Entry, error)
}

// TxRunner wraps fn in a storage transaction. The context passed to fn carries
// the transaction; stores pick it up and every write inside commits or rolls
// back as one.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Rewarder credits complaint actions to the filer's ledger.
type Rewarder interface {
	RecordComplaintFiling(ctx context.Context, userID id.UserID) (gamifysvc.Progress, error)
	RecordResolutionBonus(ctx context.Context, userID id.UserID) (gamifymodels.StatsSnapshot, error)
}

// AuditPublisher emits audit events for lifecycle changes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// NoTxRunner runs fn directly, for in-memory stores whose mutations are
// already atomic under their own lock.
type NoTxRunner struct{}

func (NoTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	store    Store
	runner   TxRunner
	rewarder Rewarder
	ranking  Ranking
	auditor  AuditPublisher
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRanking enables the top-validators query.
func WithRanking(r Ranking) Option {
	return func(s *Service) { s.ranking = r }
}

func New(store Store, runner TxRunner, rewarder Rewarder, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("complaint store is required")
	}
	if runner == nil {
		return nil, errors.New("tx runner is required")
	}
	if rewarder == nil {
		return nil, errors.New("rewarder is required")
	}

	svc := &Service{
		store:    store,
		runner:   runner,
		rewarder: rewarder,
		tracer:   otel.Tracer(tracerName),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// SubmitInput carries one citizen filing. UserID is nil for anonymous
// submissions; those are accepted but can never earn the resolution bonus.
type SubmitInput struct {
	CMLCode       string
	ProductName   string
	IssueType     string
	ComplaintText string
	Geo           *models.Geo
	UserID        *id.UserID
}

// SubmitResult is the created complaint plus any ledger progress the filing
// earned.
type SubmitResult struct {
	Complaint *models.Complaint   `json:"complaint"`
	Progress  *gamifysvc.Progress `json:"progress,omitempty"`
}

// Submit validates and files a complaint at pending status. Filing rewards are
// credited after the complaint is stored; if crediting fails the complaint
// stands and the failure is logged.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	code, err := verify.NormalizeCode(in.CMLCode)
	if err != nil {
		return SubmitResult{}, err
	}
	issueType, err := models.ParseIssueType(in.IssueType)
	if err != nil {
		return SubmitResult{}, err
	}
	if strings.TrimSpace(in.ProductName) == "" {
		return SubmitResult{}, dErrors.New(dErrors.CodeValidation, "product name is required")
	}
	if strings.TrimSpace(in.ComplaintText) == "" {
		return SubmitResult{}, dErrors.New(dErrors.CodeValidation, "complaint text is required")
	}

	c := &models.Complaint{
		ID:            id.NewComplaintID(),
		CMLCode:       code,
		ProductName:   strings.TrimSpace(in.ProductName),
		IssueType:     issueType,
		ComplaintText: strings.TrimSpace(in.ComplaintText),
		Geo:           in.Geo,
		SubmittedAt:   time.Now(),
		Status:        models.StatusPending,
		UserID:        in.UserID,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return SubmitResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store complaint")
	}

	if s.metrics != nil {
		s.metrics.ComplaintsSubmitted.Inc()
	}

	result := SubmitResult{Complaint: c}
	if in.UserID != nil {
		progress, err := s.rewarder.RecordComplaintFiling(ctx, *in.UserID)
		if err != nil {
			s.logger.WarnContext(ctx, "complaint stored but filing reward failed",
				"complaint_id", c.ID.String(), "user_id", in.UserID.String(), "error", err)
		} else {
			result.Progress = &progress
		}
	}
	return result, nil
}

// Transition moves a complaint to a new lifecycle status. The first move into
// resolved for an owned complaint also pays the one-shot bonus; the status
// write, the bonus claim, and the ledger credit commit in one transaction.
// Resolving an already-resolved complaint succeeds and changes nothing but the
// notes.
func (s *Service) Transition(ctx context.Context, complaintID id.ComplaintID, newStatus models.Status, adminNotes, actorID string) (*models.Complaint, bool, error) {
	ctx, span := s.tracer.Start(ctx, "complaint.Transition", trace.WithAttributes(
		attribute.String("complaint.id", complaintID.String()),
		attribute.String("complaint.new_status", newStatus.String()),
	))
	defer span.End()

	var out *models.Complaint
	var bonusAwarded bool
	var oldStatus models.Status

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.store.FindByID(ctx, complaintID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "complaint not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load complaint")
		}
		oldStatus = c.Status

		if err := s.store.UpdateStatus(ctx, complaintID, newStatus, adminNotes); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update complaint")
		}

		if c.EligibleForBonus(newStatus) {
			claimed, err := s.store.ClaimResolutionBonus(ctx, complaintID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to claim resolution bonus")
			}
			if claimed {
				if _, err := s.rewarder.RecordResolutionBonus(ctx, *c.UserID); err != nil {
					return err
				}
				bonusAwarded = true
			}
		}

		out = c.Clone()
		out.Status = newStatus
		if adminNotes != "" {
			out.AdminNotes = adminNotes
		}
		out.PointsAwarded = c.PointsAwarded || bonusAwarded
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	span.SetAttributes(attribute.Bool("complaint.bonus_awarded", bonusAwarded))
	s.emitAudit(ctx, audit.Event{
		UserID:  ownerOrZero(out),
		ActorID: actorID,
		Action:  string(audit.EventComplaintStatusChanged),
		Subject: complaintID.String(),
		Reason:  oldStatus.String() + "->" + newStatus.String(),
	})
	if s.metrics != nil && newStatus == models.StatusResolved && oldStatus != models.StatusResolved {
		s.metrics.ComplaintsResolved.Inc()
	}

	return out, bonusAwarded, nil
}

// Get returns one complaint.
func (s *Service) Get(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error) {
	c, err := s.store.FindByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "complaint not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load complaint")
	}
	return c, nil
}

// List returns complaints matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.Complaint, error) {
	out, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list complaints")
	}
	return out, nil
}

// ListByUser returns the caller's own filings, newest first.
func (s *Service) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Complaint, error) {
	out, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list complaints")
	}
	return out, nil
}

// Stats aggregates complaint counts per lifecycle state.
func (s *Service) Stats(ctx context.Context) (models.StatusCounts, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return models.StatusCounts{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count complaints")
	}
	return counts, nil
}

// ByDay returns submissions per calendar day over the trailing window.
func (s *Service) ByDay(ctx context.Context, days int) ([]models.DayCount, error) {
	if days <= 0 {
		days = 30
	}
	out, err := s.store.CountByDay(ctx, days)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count complaints by day")
	}
	return out, nil
}

// TopValidators returns the highest-scoring users with their resolved-filing
// counts attached. Ordering is by ledger score, the same order the public
// leaderboard uses.
func (s *Service) TopValidators(ctx context.Context, limit int) ([]models.TopValidator, error) {
	if limit <= 0 {
		limit = 10
	}
	if s.ranking == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "validator ranking is not configured")
	}

	ranked, err := s.ranking.TopByScore(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to rank validators")
	}
	resolved, err := s.store.CountResolvedByUser(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count resolved filings")
	}

	out := make([]models.TopValidator, 0, len(ranked))
	for _, e := range ranked {
		out = append(out, models.TopValidator{
			UserID:   e.UserID,
			Name:     e.Name,
			Score:    e.Score,
			Resolved: resolved[e.UserID],
		})
	}
	return out, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}

func ownerOrZero(c *models.Complaint) id.UserID {
	if c != nil && c.UserID != nil {
		return *c.UserID
	}
	return id.UserID{}
}
