package models

import (
	"time"

	"github.com/bugswriter/shiosayi-backend/internal/tier"
)

// Guardian is a paying member entitled to adopt films according to tier quota.
//
// Invariants:
//   - Email is unique across guardians
//   - Token is unique and never rotated; it only changes via explicit reissue
//   - Tier is always one of the tiers defined in the tier package
type Guardian struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Tier       tier.Tier `json:"tier"`
	Token      string    `json:"-"`
	JoinedAt   time.Time `json:"joined_at"`
	LastPaidAt time.Time `json:"last_paid_at"`
}

// Quota returns the guardian's adoption limit.
func (g *Guardian) Quota() int {
	return tier.Quota(g.Tier)
}

// LapsedBy reports whether the guardian's last payment is older than cutoff.
func (g *Guardian) LapsedBy(cutoff time.Time) bool {
	return g.LastPaidAt.Before(cutoff)
}

// Profile is the redacted view returned to authenticated clients. The token
// itself is never echoed back.
type Profile struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Tier  tier.Tier `json:"tier"`
}

// ProfileOf projects a guardian into its client-facing profile.
func ProfileOf(g *Guardian) Profile {
	return Profile{ID: g.ID, Name: g.Name, Email: g.Email, Tier: g.Tier}
}
