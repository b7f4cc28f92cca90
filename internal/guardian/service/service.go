// Package service implements the guardian registry: account creation on first
// qualifying payment, payment bookkeeping, and bearer-token authentication.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	guardianmetrics "github.com/bugswriter/shiosayi-backend/internal/guardian/metrics"
	"github.com/bugswriter/shiosayi-backend/internal/guardian/models"
	"github.com/bugswriter/shiosayi-backend/internal/guardian/store"
	"github.com/bugswriter/shiosayi-backend/internal/tier"
	dErrors "github.com/bugswriter/shiosayi-backend/pkg/domain-errors"
	"github.com/bugswriter/shiosayi-backend/pkg/platform/sentinel"
	"github.com/bugswriter/shiosayi-backend/pkg/requestcontext"
	"github.com/bugswriter/shiosayi-backend/pkg/secrets"
)

// tokenPrefix marks every issued API credential.
const tokenPrefix = "shio"

// Service wraps the guardian store with id/token issuance and error
// translation.
type Service struct {
	guardians store.Store
	metrics   *guardianmetrics.Metrics
}

func New(guardians store.Store, metrics *guardianmetrics.Metrics) *Service {
	return &Service{guardians: guardians, metrics: metrics}
}

// Register creates a guardian for an email not yet known to the registry. The
// token is generated fresh and returned exactly once via the created record;
// it is never rotated afterwards. Returns sentinel.ErrAlreadyUsed when the
// email is already registered, which callers treat as "look the guardian up
// instead".
func (s *Service) Register(ctx context.Context, name, email string, t tier.Tier) (*models.Guardian, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !tier.Valid(t) {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown tier")
	}

	token, err := secrets.GenerateToken(tokenPrefix)
	if err != nil {
		return nil, fmt.Errorf("issue guardian token: %w", err)
	}

	now := requestcontext.Now(ctx)
	g := &models.Guardian{
		ID:         "g_" + uuid.NewString(),
		Name:       strings.TrimSpace(name),
		Email:      email,
		Tier:       t,
		Token:      token,
		JoinedAt:   now,
		LastPaidAt: now,
	}
	if err := s.guardians.Create(ctx, g); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create guardian")
	}
	s.metrics.IncrementCreated()
	return g, nil
}

// FindByEmail looks a guardian up by email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.Guardian, error) {
	g, err := s.guardians.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "guardian not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "guardian lookup failed")
	}
	return g, nil
}

// RecordPayment applies a qualifying payment: tier and last-paid date are
// updated, and the tier in effect before the payment is returned so the
// caller can tell an upgrade from a renewal. The token is left untouched.
func (s *Service) RecordPayment(ctx context.Context, id string, newTier tier.Tier) (tier.Tier, error) {
	if !tier.Valid(newTier) {
		return "", dErrors.New(dErrors.CodeValidation, "unknown tier")
	}
	prev, err := s.guardians.UpdateOnPayment(ctx, id, newTier, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "guardian not found")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to record payment")
	}
	if prev != newTier {
		s.metrics.IncrementUpgrades()
	} else {
		s.metrics.IncrementRenewals()
	}
	return prev, nil
}

// Authenticate resolves a bearer token to a guardian. A missing and a wrong
// token are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.Guardian, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "API token is required.")
	}
	g, err := s.guardians.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid API token.")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "token lookup failed")
	}
	return g, nil
}
