// Package notify abstracts outbound guardian notifications. Delivery is an
// external collaborator: reconciliation never depends on it succeeding.
package notify

import (
	"context"
	"log/slog"

	"github.com/bugswriter/shiosayi-backend/internal/guardian/models"
	"github.com/bugswriter/shiosayi-backend/internal/tier"
)

// Notifier dispatches guardian lifecycle notifications. Implementations must
// be best-effort: callers log failures and continue.
type Notifier interface {
	// Welcome greets a newly created guardian and delivers their API token.
	Welcome(ctx context.Context, g *models.Guardian) error
	// Upgraded tells an existing guardian their tier changed. The token is
	// unchanged and is not re-sent.
	Upgraded(ctx context.Context, g *models.Guardian, previous tier.Tier) error
}

// LogNotifier writes notifications to the structured log. It stands in for a
// mail provider in tests and local runs.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Welcome(_ context.Context, g *models.Guardian) error {
	n.logger.Info("notify: welcome",
		"guardian_id", g.ID,
		"email", g.Email,
		"tier", g.Tier,
	)
	return nil
}

func (n *LogNotifier) Upgraded(_ context.Context, g *models.Guardian, previous tier.Tier) error {
	n.logger.Info("notify: tier upgraded",
		"guardian_id", g.ID,
		"email", g.Email,
		"previous_tier", previous,
		"tier", g.Tier,
	)
	return nil
}
