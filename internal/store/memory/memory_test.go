package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

func input(date, category string, amount float64) core.ExpenseInput {
	return core.ExpenseInput{Date: date, Category: category, Amount: core.NewAmount(amount)}
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.Create(ctx, input("2024-03-01", "Food", 100))
	if err != nil || created.ID.IsZero() {
		t.Fatalf("unexpected create: rec=%+v err=%v", created, err)
	}

	updated, err := s.Update(ctx, created.ID, input("2024-03-02", "Bills", 40))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID || updated.Category != "Bills" {
		t.Fatalf("update did not replace record: %+v", updated)
	}

	list, _ := s.ListAll(ctx)
	if len(list) != 1 || list[0].Date != "2024-03-02" {
		t.Fatalf("unexpected list: %+v", list)
	}

	if err := s.Remove(ctx, created.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second remove: want ErrNotFound, got %v", err)
	}
	if _, err := s.Update(ctx, created.ID, input("2024-03-02", "Bills", 1)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update missing: want ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreRejectsInvalidInput(t *testing.T) {
	s := New()
	_, err := s.Create(context.Background(), core.ExpenseInput{Category: "Food"})
	if !errors.Is(err, core.ErrMissingDate) {
		t.Fatalf("want ErrMissingDate, got %v", err)
	}
}

func TestMemoryStoreListIsACopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.Create(ctx, input("2024-03-01", "Food", 1))

	list, _ := s.ListAll(ctx)
	list[0].Category = "Changed"

	again, _ := s.ListAll(ctx)
	if again[0].Category != "Food" {
		t.Fatalf("store mutated through returned slice")
	}
}

func TestMemoryStoreSummary(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.Create(ctx, input("2024-03-01", "Food", 100))
	_, _ = s.Create(ctx, input("2024-03-01", "Food", 50))
	_, _ = s.Create(ctx, input("2024-03-02", "Transport", 25))

	sum, err := s.Summary(ctx)
	if err != nil || len(sum) != 2 {
		t.Fatalf("unexpected summary: %+v err=%v", sum, err)
	}
	if sum[0].Category != "Food" || sum[0].Total.String() != "150.00" {
		t.Fatalf("unexpected food total: %+v", sum[0])
	}
}

func TestNewFromFileSeeds(t *testing.T) {
	dir := t.TempDir()

	// Missing file -> empty store
	s, err := NewFromFile(filepath.Join(dir, "missing.jsonl"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if list, _ := s.ListAll(context.Background()); len(list) != 0 {
		t.Fatalf("expected empty store, got %d", len(list))
	}

	path := filepath.Join(dir, "seed.jsonl")
	content := "# seed\n" +
		`{"id":1,"date":"2024-03-01","category":"Food","amount":"12.50"}` + "\n\n" +
		`{"date":"2024-03-02","category":"Bills","amount":3}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	list, _ := s.ListAll(context.Background())
	if len(list) != 2 {
		t.Fatalf("want 2 records, got %d", len(list))
	}
	if list[0].ID != "1" || list[0].Amount.String() != "12.50" {
		t.Fatalf("unexpected first record: %+v", list[0])
	}
	if list[1].ID.IsZero() {
		t.Fatalf("seeded record without id should get one")
	}
}

func TestNewFromFileRejectsBadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.jsonl")
	if err := os.WriteFile(path, []byte("{not json\n"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatalf("expected error for malformed seed line")
	}
}
