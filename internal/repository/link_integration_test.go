//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/afftrack/afftrack/internal/testutil"
)

// ============================================================================
// Link Repository Integration Tests
// ============================================================================

func TestIntegrationLinkRepository_CreateLink(t *testing.T) {
	ctx, repo := newLinkTestEnv(t)

	slug := testutil.UniqueSlug("create")
	link := testutil.NewTestLink(t, slug)

	err := repo.CreateLink(ctx, link)
	if err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	// Verify link exists in DB
	retrieved, err := repo.GetLinkByID(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetLinkByID failed: %v", err)
	}

	if retrieved.Slug != slug {
		t.Errorf("Slug mismatch: got %q, want %q", retrieved.Slug, slug)
	}
	if retrieved.Destination != link.Destination {
		t.Errorf("Destination mismatch: got %q, want %q", retrieved.Destination, link.Destination)
	}
	if retrieved.ClickCount != 0 {
		t.Errorf("ClickCount = %d, want 0", retrieved.ClickCount)
	}
	if retrieved.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if len(retrieved.Tags) != 2 || retrieved.Tags[0] != "alpha" || retrieved.Tags[1] != "beta" {
		t.Errorf("Tags mismatch: got %v", retrieved.Tags)
	}
	if retrieved.TrustBadges == nil {
		t.Error("TrustBadges must round-trip as empty list, not nil")
	}
}

func TestIntegrationLinkRepository_CreateLink_DuplicateSlug(t *testing.T) {
	ctx, repo := newLinkTestEnv(t)

	slug := testutil.UniqueSlug("dup")
	link1 := testutil.NewTestLink(t, slug)
	link2 := testutil.NewTestLink(t, slug)
	link2.ID = testutil.UniqueID("link") // Different ID, same slug

	if err := repo.CreateLink(ctx, link1); err != nil {
		t.Fatalf("CreateLink (first) failed: %v", err)
	}

	err := repo.CreateLink(ctx, link2)
	if !errors.Is(err, ErrSlugExists) {
		t.Errorf("Expected ErrSlugExists, got: %v", err)
	}
}

func TestIntegrationLinkRepository_GetLinkBySlug(t *testing.T) {
	ctx, repo := newLinkTestEnv(t)

	slug := testutil.UniqueSlug("byslug")
	link := testutil.NewTestLink(t, slug)

	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	retrieved, err := repo.GetLinkBySlug(ctx, slug)
	if err != nil {
		t.Fatalf("GetLinkBySlug failed: %v", err)
	}
	if retrieved.ID != link.ID {
		t.Errorf("ID mismatch: got %q, want %q", retrieved.ID, link.ID)
	}

	_, err = repo.GetLinkBySlug(ctx, "no-such-slug")
	if !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected ErrLinkNotFound, got: %v", err)
	}
}

func TestIntegrationLinkRepository_GetLinkByID_NotFound(t *testing.T) {
	ctx, repo := newLinkTestEnv(t)

	_, err := repo.GetLinkByID(ctx, testutil.UniqueID("missing"))
	if !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected ErrLinkNotFound, got: %v", err)
	}
}

func TestIntegrationLinkRepository_ListLinks_NewestFirst(t *testing.T) {
	ctx, repo := newLinkTestEnv(t)

	older := testutil.NewTestLink(t, testutil.UniqueSlug("older"))
	older.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	older.UpdatedAt = older.CreatedAt
	newer := testutil.NewTestLink(t, testutil.UniqueSlug("newer"))

	if err := repo.CreateLink(ctx, older); err != nil {
		t.Fatalf("CreateLink (older) failed: %v", err)
	}
	if err := repo.CreateLink(ctx, newer); err != nil {
		t.Fatalf("CreateLink (newer) failed: %v", err)
	}

	links, err := repo.ListLinks(ctx)
	if err != nil {
		t.Fatalf("ListLinks failed: %v", err)
	}

	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].ID != newer.ID {
		t.Errorf("expected newest link first, got %q", links[0].ID)
	}
}

func TestIntegrationLinkRepository_UpdateLink_Partial(t *testing.T) {
	ctx, repo := newLinkTestEnv(t)

	link := testutil.NewTestLink(t, testutil.UniqueSlug("update"))
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	title := "Updated Title"
	active := false
	changes, err := repo.UpdateLink(ctx, link.ID, &LinkPatch{Title: &title, Active: &active})
	if err != nil {
		t.Fatalf("UpdateLink failed: %v", err)
	}
	if changes != 1 {
		t.Errorf("changes = %d, want 1", changes)
	}

	retrieved, err := repo.GetLinkByID(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetLinkByID failed: %v", err)
	}

	if retrieved.Title != title {
		t.Errorf("Title = %q, want %q", retrieved.Title, title)
	}
	if retrieved.Active {
		t.Error("Active should be false after update")
	}
	// Untouched fields survive the patch
	if retrieved.Description != link.Description {
		t.Errorf("Description changed unexpectedly: %q", retrieved.Description)
	}
	if retrieved.Slug != link.Slug {
		t.Errorf("Slug changed unexpectedly: %q", retrieved.Slug)
	}
	if !retrieved.UpdatedAt.After(link.UpdatedAt) {
		t.Error("UpdatedAt should advance on update")
	}
}

func TestIntegrationLinkRepository_UpdateLink_EmptyPatchTouchesRow(t *testing.T) {
	ctx, repo := newLinkTestEnv(t)

	link := testutil.NewTestLink(t, testutil.UniqueSlug("touch"))
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	changes, err := repo.UpdateLink(ctx, link.ID, &LinkPatch{})
	if err != nil {
		t.Fatalf("UpdateLink failed: %v", err)
	}
	if changes != 1 {
		t.Errorf("changes = %d, want 1", changes)
	}
}

func TestIntegrationLinkRepository_UpdateLink_NotFound(t *testing.T) {
	ctx, repo := newLinkTestEnv(t)

	title := "x"
	_, err := repo.UpdateLink(ctx, testutil.UniqueID("missing"), &LinkPatch{Title: &title})
	if !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected ErrLinkNotFound, got: %v", err)
	}
}

func TestIntegrationLinkRepository_UpdateLink_SlugConflict(t *testing.T) {
	ctx, repo := newLinkTestEnv(t)

	taken := testutil.NewTestLink(t, testutil.UniqueSlug("taken"))
	victim := testutil.NewTestLink(t, testutil.UniqueSlug("victim"))
	victim.ID = testutil.UniqueID("link")

	if err := repo.CreateLink(ctx, taken); err != nil {
		t.Fatalf("CreateLink (taken) failed: %v", err)
	}
	if err := repo.CreateLink(ctx, victim); err != nil {
		t.Fatalf("CreateLink (victim) failed: %v", err)
	}

	_, err := repo.UpdateLink(ctx, victim.ID, &LinkPatch{Slug: &taken.Slug})
	if !errors.Is(err, ErrSlugExists) {
		t.Errorf("Expected ErrSlugExists, got: %v", err)
	}
}

func TestIntegrationLinkRepository_DeleteLink(t *testing.T) {
	ctx, repo := newLinkTestEnv(t)

	link := testutil.NewTestLink(t, testutil.UniqueSlug("delete"))
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	if err := repo.DeleteLink(ctx, link.ID); err != nil {
		t.Fatalf("DeleteLink failed: %v", err)
	}

	_, err := repo.GetLinkByID(ctx, link.ID)
	if !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected ErrLinkNotFound after delete, got: %v", err)
	}

	if err := repo.DeleteLink(ctx, link.ID); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected ErrLinkNotFound on second delete, got: %v", err)
	}
}

func TestIntegrationLinkRepository_IncrementClickCount(t *testing.T) {
	ctx, repo := newLinkTestEnv(t)

	link := testutil.NewTestLink(t, testutil.UniqueSlug("incr"))
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	if err := repo.IncrementClickCount(ctx, link.ID); err != nil {
		t.Fatalf("IncrementClickCount failed: %v", err)
	}

	retrieved, err := repo.GetLinkByID(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetLinkByID failed: %v", err)
	}
	if retrieved.ClickCount != 1 {
		t.Errorf("ClickCount = %d, want 1", retrieved.ClickCount)
	}

	if err := repo.IncrementClickCount(ctx, testutil.UniqueID("missing")); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Expected ErrLinkNotFound, got: %v", err)
	}
}

func TestIntegrationLinkRepository_IncrementClickCount_Concurrent(t *testing.T) {
	ctx, repo := newLinkTestEnv(t)

	link := testutil.NewTestLink(t, testutil.UniqueSlug("race"))
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.IncrementClickCount(ctx, link.ID)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("IncrementClickCount failed: %v", err)
		}
	}

	retrieved, err := repo.GetLinkByID(ctx, link.ID)
	if err != nil {
		t.Fatalf("GetLinkByID failed: %v", err)
	}
	// Relative increments never lose concurrent updates
	if retrieved.ClickCount != workers {
		t.Errorf("ClickCount = %d, want %d", retrieved.ClickCount, workers)
	}
}

func newLinkTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}
