// Package reconciler applies validated payment events to guardian state:
// create on first qualifying payment, upgrade or renew on subsequent ones.
package reconciler

import (
	"context"
	"errors"
	"log/slog"

	eventmodels "github.com/bugswriter/shiosayi-backend/internal/event/models"
	guardianmodels "github.com/bugswriter/shiosayi-backend/internal/guardian/models"
	guardianservice "github.com/bugswriter/shiosayi-backend/internal/guardian/service"
	"github.com/bugswriter/shiosayi-backend/internal/notify"
	"github.com/bugswriter/shiosayi-backend/internal/tier"
	dErrors "github.com/bugswriter/shiosayi-backend/pkg/domain-errors"
	"github.com/bugswriter/shiosayi-backend/pkg/email"
	"github.com/bugswriter/shiosayi-backend/pkg/platform/sentinel"
)

// Action says what a reconciliation did to guardian state.
type Action int

const (
	// Created: first qualifying payment for this email; account provisioned.
	Created Action = iota
	// Upgraded: existing guardian moved to a different tier. The token is
	// untouched.
	Upgraded
	// Renewed: same-tier payment; only last_paid_at moved.
	Renewed
)

// Result reports the applied transition.
type Result struct {
	Action   Action
	Guardian *guardianmodels.Guardian
	Previous tier.Tier // set for Upgraded and Renewed
}

// Service is the subscription reconciler.
type Service struct {
	guardians *guardianservice.Service
	notifier  notify.Notifier
	logger    *slog.Logger
}

func New(guardians *guardianservice.Service, notifier notify.Notifier, logger *slog.Logger) *Service {
	return &Service{guardians: guardians, notifier: notifier, logger: logger}
}

// Reconcile applies one qualifying subscription event. The caller has already
// stored the event durably and checked that it qualifies (subscription kind,
// subscription payment, tier label present), so a crash here can be replayed
// safely: creation falls through to a payment update on the existing record,
// and RecordPayment is idempotent-equivalent for the same inputs.
//
// Notification dispatch is best-effort. Payment state is the source of truth;
// a failed send is logged and never rolls the transition back.
func (s *Service) Reconcile(ctx context.Context, e *eventmodels.PaymentEvent) (*Result, error) {
	t := tier.Normalize(e.TierLabel)

	g, err := s.guardians.FindByEmail(ctx, e.PayerEmail)
	switch {
	case err == nil:
		return s.applyPayment(ctx, g, t)
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		return s.createGuardian(ctx, e, t)
	default:
		return nil, err
	}
}

func (s *Service) createGuardian(ctx context.Context, e *eventmodels.PaymentEvent, t tier.Tier) (*Result, error) {
	name := e.PayerName
	if name == "" {
		name = email.DisplayName(e.PayerEmail)
	}

	g, err := s.guardians.Register(ctx, name, e.PayerEmail, t)
	if err != nil {
		// Two concurrent events for the same new email: exactly one create
		// wins; the loser lands here and applies its payment instead.
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			existing, findErr := s.guardians.FindByEmail(ctx, e.PayerEmail)
			if findErr != nil {
				return nil, findErr
			}
			return s.applyPayment(ctx, existing, t)
		}
		return nil, err
	}

	s.logger.Info("guardian created",
		"guardian_id", g.ID,
		"email", g.Email,
		"tier", g.Tier,
	)
	if nerr := s.notifier.Welcome(ctx, g); nerr != nil {
		s.logger.Error("welcome notification failed", "guardian_id", g.ID, "error", nerr)
	}
	return &Result{Action: Created, Guardian: g}, nil
}

func (s *Service) applyPayment(ctx context.Context, g *guardianmodels.Guardian, t tier.Tier) (*Result, error) {
	prev, err := s.guardians.RecordPayment(ctx, g.ID, t)
	if err != nil {
		return nil, err
	}
	g.Tier = t

	if prev != t {
		s.logger.Info("guardian tier changed",
			"guardian_id", g.ID,
			"previous_tier", prev,
			"tier", t,
		)
		if nerr := s.notifier.Upgraded(ctx, g, prev); nerr != nil {
			s.logger.Error("upgrade notification failed", "guardian_id", g.ID, "error", nerr)
		}
		return &Result{Action: Upgraded, Guardian: g, Previous: prev}, nil
	}

	// Renewal is silent: no notification, log only.
	s.logger.Info("guardian renewed", "guardian_id", g.ID, "tier", t)
	return &Result{Action: Renewed, Guardian: g, Previous: prev}, nil
}
