package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"nomadprices/internal/core"
	"nomadprices/internal/entries"
)

func TestMemoryStoreInsertPrepends(t *testing.T) {
	ctx := context.Background()
	s := New()

	all, err := s.All(ctx)
	if err != nil || len(all) != 0 || all == nil {
		t.Fatalf("expected empty non-nil list, got %v err=%v", all, err)
	}

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Insert(ctx, core.PriceEntry{ID: id}); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	all, _ = s.All(ctx)
	if got := fmt.Sprint(ids(all)); got != "[c b a]" {
		t.Fatalf("expected most recent first, got %s", got)
	}
	if n, _ := s.Len(ctx); n != 3 {
		t.Fatalf("len = %d", n)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Insert(ctx, core.PriceEntry{ID: "a", ItemName: "Coffee"})

	all, _ := s.All(ctx)
	all[0].ItemName = "changed"

	again, _ := s.All(ctx)
	if again[0].ItemName != "Coffee" {
		t.Fatalf("store was mutated through returned slice")
	}
}

func TestMemoryStoreDoesNotValidate(t *testing.T) {
	s := New()
	if err := s.Insert(context.Background(), core.PriceEntry{}); err != nil {
		t.Fatalf("expected insert of raw entry to succeed, got %v", err)
	}
}

func TestMemoryStoreConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Insert(ctx, core.PriceEntry{ID: fmt.Sprint(i)})
			_, _ = s.All(ctx)
		}(i)
	}
	wg.Wait()
	if n, _ := s.Len(ctx); n != 50 {
		t.Fatalf("len = %d, want 50", n)
	}
}

func TestSeedKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed := entries.DefaultSeed()
	if err := entries.Seed(ctx, s, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	all, _ := s.All(ctx)
	if got := fmt.Sprint(ids(all)); got != "[1 2 3]" {
		t.Fatalf("seed order = %s", got)
	}
}

func ids(list []core.PriceEntry) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}
