// Package tier defines the membership levels and their adoption quotas.
package tier

import "strings"

// Tier is a guardian membership level.
type Tier string

const (
	Lover  Tier = "lover"
	Keeper Tier = "keeper"
	Savior Tier = "savior"
)

// Quota returns how many films a guardian of the given tier may hold.
// Unknown tiers get zero: a record that somehow carries a bad tier must never
// be granted adoptions.
func Quota(t Tier) int {
	switch t {
	case Lover:
		return 1
	case Keeper:
		return 5
	case Savior:
		return 10
	default:
		return 0
	}
}

// Normalize maps an upstream tier label to an internal tier. Unknown or empty
// labels default to the lowest tier so a mislabeled payment can never grant
// unearned quota.
func Normalize(label string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(label))) {
	case Lover:
		return Lover
	case Keeper:
		return Keeper
	case Savior:
		return Savior
	default:
		return Lover
	}
}

// Valid reports whether t is one of the defined tiers.
func Valid(t Tier) bool {
	return t == Lover || t == Keeper || t == Savior
}
