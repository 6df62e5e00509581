package index

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/mantyhq/manty/internal/embedding"
	"github.com/mantyhq/manty/internal/fault"
	"github.com/mantyhq/manty/internal/trend"
)

func testIndex(t *testing.T, dims int) *SQLiteIndex {
	t.Helper()
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"), dims)
	if err != nil {
		t.Fatalf("NewSQLiteIndex: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func testMeta(name string, popularity int) Metadata {
	return Metadata{
		Name:       name,
		Category:   trend.CategoryLifestyle,
		Platforms:  nil,
		Popularity: popularity,
		Mood:       "energetic",
		IsActive:   true,
	}
}

func unitVec(dims, hot int) embedding.Vector {
	v := make(embedding.Vector, dims)
	v[hot] = 1
	return v
}

func TestSQLiteIndexUpsertThenQuery(t *testing.T) {
	idx := testIndex(t, 4)
	ctx := context.Background()

	vec := embedding.Vector{0.5, 0.5, 0.5, 0.5}
	if err := idx.Upsert(ctx, "trend-1", vec, testMeta("Golden Hour", 80)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	hits, err := idx.Query(ctx, vec, 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].ID != "trend-1" {
		t.Errorf("top hit %q, want trend-1", hits[0].ID)
	}
	if math.Abs(hits[0].Score-1.0) > 1e-6 {
		t.Errorf("self-query score = %v, want ~1.0", hits[0].Score)
	}
	if hits[0].Meta.Name != "Golden Hour" || hits[0].Meta.Popularity != 80 {
		t.Errorf("metadata not round-tripped: %+v", hits[0].Meta)
	}
}

func TestSQLiteIndexRankingAndTruncation(t *testing.T) {
	idx := testIndex(t, 4)
	ctx := context.Background()

	ids := []string{"a", "b", "c", "d"}
	for i, id := range ids {
		if err := idx.Upsert(ctx, id, unitVec(4, i), testMeta("t-"+id, 10)); err != nil {
			t.Fatalf("Upsert %s: %v", id, err)
		}
	}

	// Query closest to axis 0, then axis 1, barely touching axis 2.
	query := embedding.Vector{1.0, 0.5, 0.1, 0}
	hits, err := idx.Query(ctx, query, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].ID != "a" || hits[1].ID != "b" {
		t.Errorf("ranking = [%s %s], want [a b]", hits[0].ID, hits[1].ID)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("scores not descending: %v then %v", hits[0].Score, hits[1].Score)
	}
}

func TestSQLiteIndexTieBreakPrefersPopularity(t *testing.T) {
	idx := testIndex(t, 4)
	ctx := context.Background()

	// Identical vectors score identically; the lower-ID trend must not
	// crowd out a more popular one at the truncation boundary.
	vec := unitVec(4, 0)
	if err := idx.Upsert(ctx, "aaa", vec, testMeta("niche", 10)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := idx.Upsert(ctx, "zzz", vec, testMeta("viral", 90)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	hits, err := idx.Query(ctx, vec, 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].ID != "zzz" {
		t.Errorf("equal-score truncation kept %q, want the more popular zzz", hits[0].ID)
	}
}

func TestSQLiteIndexExcludesInactive(t *testing.T) {
	idx := testIndex(t, 4)
	ctx := context.Background()

	vec := unitVec(4, 0)
	if err := idx.Upsert(ctx, "active", unitVec(4, 1), testMeta("active", 10)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	inactive := testMeta("retired", 100)
	inactive.IsActive = false
	if err := idx.Upsert(ctx, "retired", vec, inactive); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// The inactive trend is an exact match but must never surface.
	hits, err := idx.Query(ctx, vec, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for _, h := range hits {
		if h.ID == "retired" {
			t.Fatal("inactive trend surfaced in query results")
		}
	}
	if len(hits) != 1 || hits[0].ID != "active" {
		t.Errorf("hits = %+v, want only the active trend", hits)
	}
}

func TestSQLiteIndexDeactivate(t *testing.T) {
	idx := testIndex(t, 4)
	ctx := context.Background()

	vec := unitVec(4, 0)
	if err := idx.Upsert(ctx, "t1", vec, testMeta("t1", 10)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := idx.Deactivate(ctx, "t1"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	hits, err := idx.Query(ctx, vec, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("deactivated trend still queryable: %+v", hits)
	}

	// Metadata survives soft delete.
	all, err := idx.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].Meta.IsActive {
		t.Errorf("List(includeInactive) = %+v, want one inactive row", all)
	}
}

func TestSQLiteIndexDelete(t *testing.T) {
	idx := testIndex(t, 4)
	ctx := context.Background()

	vec := unitVec(4, 0)
	if err := idx.Upsert(ctx, "t1", vec, testMeta("t1", 10)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := idx.Delete(ctx, "t1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	all, err := idx.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("row survived hard delete: %+v", all)
	}
}

func TestSQLiteIndexUpsertOverwrites(t *testing.T) {
	idx := testIndex(t, 4)
	ctx := context.Background()

	if err := idx.Upsert(ctx, "t1", unitVec(4, 0), testMeta("first", 10)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := idx.Upsert(ctx, "t1", unitVec(4, 1), testMeta("second", 99)); err != nil {
		t.Fatalf("Upsert overwrite: %v", err)
	}

	hits, err := idx.Query(ctx, unitVec(4, 1), 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d rows after overwrite, want 1", len(hits))
	}
	if hits[0].Meta.Name != "second" || hits[0].Meta.Popularity != 99 {
		t.Errorf("overwrite did not replace metadata: %+v", hits[0].Meta)
	}
}

func TestSQLiteIndexRejectsBadInput(t *testing.T) {
	idx := testIndex(t, 4)
	ctx := context.Background()

	var idxErr *fault.IndexError
	if err := idx.Upsert(ctx, "t1", unitVec(8, 0), testMeta("t1", 10)); !errors.As(err, &idxErr) {
		t.Errorf("dimension mismatch upsert: got %v, want IndexError", err)
	}
	if _, err := idx.Query(ctx, unitVec(4, 0), 0); !errors.As(err, &idxErr) {
		t.Errorf("topK=0 query: got %v, want IndexError", err)
	}
	if _, err := idx.Query(ctx, unitVec(8, 0), 3); !errors.As(err, &idxErr) {
		t.Errorf("dimension mismatch query: got %v, want IndexError", err)
	}
}
