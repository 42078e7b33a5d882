package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/okian/lifelines/internal/domain/model"
)

func rec(id string, prominence, birth int) model.Record {
	return model.Record{ID: id, Name: id, Prominence: prominence, BirthYear: birth, DeathYear: model.Year(birth + 60)}
}

func TestTreapStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(ctx)
	defer store.Close()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}
	if all := store.All(ctx); len(all) != 0 {
		t.Errorf("expected empty snapshot, got %d records", len(all))
	}

	if err := store.Upsert(ctx, rec("newton", 95, 1643)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	entry, err := store.Get(ctx, "newton")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 {
		t.Errorf("expected rank 1, got %d", entry.Rank)
	}
	if entry.Record.Prominence != 95 {
		t.Errorf("expected prominence 95, got %d", entry.Record.Prominence)
	}

	if _, err := store.Get(ctx, "unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Upsert(ctx, model.Record{}); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}
}

func TestTreapStore_RankingOrder(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(ctx, WithRecords([]model.Record{
		rec("c", 80, 1900),
		rec("a", 80, 1800),
		rec("b", 80, 1800),
		rec("d", 99, 2000),
		rec("e", 10, 1500),
	}))
	defer store.Close()

	want := []string{"d", "a", "b", "c", "e"}
	entries, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, id := range want {
		if entries[i].Record.ID != id || entries[i].Rank != i+1 {
			t.Errorf("position %d: expected %s rank %d, got %s rank %d", i, id, i+1, entries[i].Record.ID, entries[i].Rank)
		}
		got, err := store.Get(ctx, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if got.Rank != i+1 {
			t.Errorf("get %s: expected rank %d, got %d", id, i+1, got.Rank)
		}
	}

	top2, _ := store.TopN(ctx, 2)
	if len(top2) != 2 || top2[1].Record.ID != "a" {
		t.Errorf("unexpected top 2: %+v", top2)
	}
	if _, err := store.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestTreapStore_UpsertMovesRecord(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(ctx)
	defer store.Close()

	for i := 0; i < 5; i++ {
		if err := store.Upsert(ctx, rec(fmt.Sprintf("r%d", i), 50+i, 1800)); err != nil {
			t.Fatal(err)
		}
	}
	before := store.Version(ctx)
	snap := store.All(ctx)

	if err := store.Upsert(ctx, rec("r0", 100, 1800)); err != nil {
		t.Fatal(err)
	}
	if store.Count(ctx) != 5 {
		t.Errorf("expected count to stay 5, got %d", store.Count(ctx))
	}
	if store.Version(ctx) <= before {
		t.Errorf("expected version to advance")
	}
	e, _ := store.Get(ctx, "r0")
	if e.Rank != 1 {
		t.Errorf("expected r0 to rank first after upsert, got %d", e.Rank)
	}
	if snap[0].ID != "r4" {
		t.Errorf("previous snapshot must not change, got %s first", snap[0].ID)
	}
	if store.All(ctx)[0].ID != "r0" {
		t.Errorf("expected fresh snapshot to start with r0")
	}
}

func TestTreapStore_ReplaceMatchesSort(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(ctx)
	defer store.Close()

	rng := rand.New(rand.NewSource(3))
	records := make([]model.Record, 500)
	for i := range records {
		records[i] = rec(fmt.Sprintf("p%04d", i), rng.Intn(101), -800+rng.Intn(2800))
	}
	if err := store.Replace(ctx, records); err != nil {
		t.Fatal(err)
	}

	want := make([]model.Record, len(records))
	copy(want, records)
	sort.Slice(want, func(i, j int) bool { return less(&want[i], &want[j]) })

	got := store.All(ctx)
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Fatalf("position %d: expected %s, got %s", i, want[i].ID, got[i].ID)
		}
	}

	if err := store.Replace(ctx, []model.Record{rec("x", 1, 1), {}}); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}
	if store.Count(ctx) != len(records) {
		t.Errorf("rejected replace must leave the store untouched")
	}
}

func TestTreapStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(ctx)
	defer store.Close()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("w%d-%d", w, i%50)
				_ = store.Upsert(ctx, rec(id, (w*i)%101, 1000+i))
				_ = store.All(ctx)
				_, _ = store.TopN(ctx, 10)
			}
		}(w)
	}
	wg.Wait()

	if store.Count(ctx) != 8*50 {
		t.Errorf("expected %d records, got %d", 8*50, store.Count(ctx))
	}
	if len(store.All(ctx)) != store.Count(ctx) {
		t.Errorf("snapshot size does not match count")
	}
}

func BenchmarkTreapStore_Upsert(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore(ctx)
	defer store.Close()

	rng := rand.New(rand.NewSource(1))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Upsert(ctx, rec(fmt.Sprintf("p%d", i%10000), rng.Intn(101), rng.Intn(2000)))
	}
}

func BenchmarkTreapStore_All(b *testing.B) {
	ctx := context.Background()
	records := make([]model.Record, 10000)
	for i := range records {
		records[i] = rec(fmt.Sprintf("p%d", i), i%101, i%2000)
	}
	store := NewTreapStore(ctx, WithRecords(records))
	defer store.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.All(ctx)
	}
}
