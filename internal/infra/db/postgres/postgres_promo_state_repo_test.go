//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/repository"
)

func TestRotationRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewRotationRepo(testPool)
	cleanup(t)

	if _, err := repo.Get(ctx, repository.NoTX, "domains_en"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a fresh cursor, got %v", err)
	}

	for _, idx := range []int{1, 4} {
		c := &model.RotationCursor{ID: "domains_en", Index: idx, LastSent: time.Now().UTC()}
		if err := repo.Save(ctx, repository.NoTX, c); err != nil {
			t.Fatalf("Save(%d) failed: %v", idx, err)
		}
	}
	got, err := repo.Get(ctx, repository.NoTX, "domains_en")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Index != 4 {
		t.Errorf("expected index 4, got %d", got.Index)
	}
}

func TestOptOutRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewOptOutRepo(testPool)
	cleanup(t)

	if _, err := repo.Get(ctx, repository.NoTX, 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Save(ctx, repository.NoTX, &model.OptOut{ChatID: 5, OptedOut: true, UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(ctx, repository.NoTX, &model.OptOut{ChatID: 5, OptedOut: false, UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	got, err := repo.Get(ctx, repository.NoTX, 5)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.OptedOut {
		t.Error("expected the flag to be cleared by the second save")
	}
}

func TestGroupRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewGroupRepo(testPool)
	cleanup(t)

	first := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	if err := repo.Upsert(ctx, repository.NoTX, &model.RegisteredGroup{ChatID: -100, Title: "Old", RegisteredAt: first}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := repo.Upsert(ctx, repository.NoTX, &model.RegisteredGroup{ChatID: -100, Title: "New", RegisteredAt: time.Now()}); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if err := repo.Upsert(ctx, repository.NoTX, &model.RegisteredGroup{ChatID: -200, Title: "Other", RegisteredAt: time.Now()}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	all, err := repo.ListAll(ctx, repository.NoTX)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(all))
	}
	if all[0].Title != "New" || !all[0].RegisteredAt.Equal(first) {
		t.Errorf("expected title update with original registration time, got %+v", all[0])
	}

	if err := repo.Delete(ctx, repository.NoTX, -100); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	all, _ = repo.ListAll(ctx, repository.NoTX)
	if len(all) != 1 || all[0].ChatID != -200 {
		t.Errorf("unexpected groups after delete: %+v", all)
	}
}
