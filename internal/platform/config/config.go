package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything the server reads from the environment. The core
// never touches ambient environment state directly; main loads this once and
// injects values where needed.
type Config struct {
	Addr string

	// DatabaseURL selects the Postgres backing store. Empty means in-memory
	// stores, which is what the tests and local development use.
	DatabaseURL string

	// RedisURL enables the fast-path webhook dedup cache. Optional.
	RedisURL string

	// KofiVerificationToken authenticates inbound Ko-fi webhooks.
	KofiVerificationToken string

	// AdminToken guards the housekeeping and publish endpoints. If
	// AdminTokenHash is set it takes precedence and AdminToken is ignored.
	AdminToken     string
	AdminTokenHash string

	// ArchivePath is the append-only CSV archive for lapsed guardians.
	ArchivePath string

	// SnapshotPath is where the public snapshot artifact is written.
	SnapshotPath string

	// StaleAfter is how long a guardian may go unpaid before housekeeping
	// evicts them.
	StaleAfter time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("SHIOSAYI_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	archivePath := os.Getenv("ARCHIVE_PATH")
	if archivePath == "" {
		archivePath = "guardians_archive.csv"
	}

	snapshotPath := os.Getenv("SNAPSHOT_PATH")
	if snapshotPath == "" {
		snapshotPath = "public.db"
	}

	staleDays := 35
	if v := os.Getenv("STALE_AFTER_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			staleDays = n
		}
	}

	return Config{
		Addr:                  addr,
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
		KofiVerificationToken: os.Getenv("KOFI_VERIFICATION_TOKEN"),
		AdminToken:            os.Getenv("ADMIN_API_TOKEN"),
		AdminTokenHash:        os.Getenv("ADMIN_API_TOKEN_HASH"),
		ArchivePath:           archivePath,
		SnapshotPath:          snapshotPath,
		StaleAfter:            time.Duration(staleDays) * 24 * time.Hour,
	}
}
