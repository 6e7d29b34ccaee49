// Package testutil provides helpers for integration tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/afftrack/afftrack/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 771771

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates both tables for tests.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, name := range []string{"000002_click_analytics", "000001_affiliate_links"} {
		if err := applyMigration(ctx, pool, name+".down.sql"); err != nil {
			return err
		}
	}
	for _, name := range []string{"000001_affiliate_links", "000002_click_analytics"} {
		if err := applyMigration(ctx, pool, name+".up.sql"); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, filename string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	sql, err := os.ReadFile(filepath.Join(root, "migrations", filename))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filename, err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filename, err)
	}

	return nil
}

// UniqueSlug generates a slug unique across test runs.
func UniqueSlug(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ToLower(ulid.Make().String()[18:]))
}

// UniqueID generates an identifier unique across test runs.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, ulid.Make().String())
}

// NewTestLink builds a valid link for repository tests.
func NewTestLink(t testing.TB, slug string) *model.Link {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Link{
		ID:           UniqueID("link"),
		Slug:         slug,
		Title:        "Test Link",
		Description:  "A link used in tests",
		Destination:  "https://example.com/product",
		Category:     "testing",
		Tags:         []string{"alpha", "beta"},
		TrustBadges:  []string{},
		Active:       true,
		RedirectType: model.RedirectLanding,
		AutoRedirect: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ProjectRoot walks up from this file to the directory containing go.mod.
func ProjectRoot() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("unable to determine caller location")
	}

	dir := filepath.Dir(file)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found above testutil")
		}
		dir = parent
	}
}
