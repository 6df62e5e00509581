package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/mantyhq/manty/internal/embedding"
	"github.com/mantyhq/manty/internal/fault"
	"github.com/mantyhq/manty/internal/trend"
)

// SQLiteIndex is a local vector index backed by SQLite. Vectors and
// trend metadata live in one table; queries do a cosine-similarity scan
// over active rows. Intended for development, tests, and small corpora
// — the trend catalog is curated, not web-scale.
type SQLiteIndex struct {
	db   *sql.DB
	dims int
}

// NewSQLiteIndex opens or creates a SQLite-backed index at dbPath with
// a fixed vector dimension.
func NewSQLiteIndex(dbPath string, dims int) (*SQLiteIndex, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dims)
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	idx := &SQLiteIndex{db: db, dims: dims}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return idx, nil
}

func (s *SQLiteIndex) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trend_vectors (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		category   TEXT NOT NULL,
		platforms  TEXT,
		popularity INTEGER NOT NULL DEFAULT 0,
		hashtags   TEXT,
		mood       TEXT,
		is_active  INTEGER NOT NULL DEFAULT 1,
		embedding  TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trend_vectors_active ON trend_vectors(is_active);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteIndex) Close() error { return s.db.Close() }

func (s *SQLiteIndex) Dims() int { return s.dims }

func (s *SQLiteIndex) Upsert(ctx context.Context, id string, vec embedding.Vector, meta Metadata) error {
	if id == "" {
		return &fault.IndexError{Op: "upsert", Err: fmt.Errorf("id is required")}
	}
	if len(vec) != s.dims {
		return &fault.IndexError{Op: "upsert", Err: fmt.Errorf("vector has %d dims, index expects %d", len(vec), s.dims)}
	}
	if err := meta.Validate(); err != nil {
		return &fault.IndexError{Op: "upsert", Err: err}
	}

	embJSON, err := json.Marshal(vec)
	if err != nil {
		return &fault.IndexError{Op: "upsert", Err: err}
	}
	platformsJSON, _ := json.Marshal(meta.Platforms)
	hashtagsJSON, _ := json.Marshal(meta.Hashtags)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trend_vectors (id, name, category, platforms, popularity, hashtags, mood, is_active, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, category = excluded.category, platforms = excluded.platforms,
			popularity = excluded.popularity, hashtags = excluded.hashtags, mood = excluded.mood,
			is_active = excluded.is_active, embedding = excluded.embedding, updated_at = excluded.updated_at`,
		id, meta.Name, string(meta.Category), string(platformsJSON), meta.Popularity,
		string(hashtagsJSON), meta.Mood, boolToInt(meta.IsActive), string(embJSON),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Trend vector upsert failed")
		return &fault.IndexError{Op: "upsert", Err: err}
	}

	log.Debug().Str("id", id).Str("name", meta.Name).Int("popularity", meta.Popularity).Msg("Trend vector upserted")
	return nil
}

func (s *SQLiteIndex) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM trend_vectors WHERE id = ?`, id); err != nil {
		return &fault.IndexError{Op: "delete", Err: err}
	}
	return nil
}

// Deactivate soft-deletes a trend: it stops matching but its metadata
// survives so historical matches stay explainable.
func (s *SQLiteIndex) Deactivate(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE trend_vectors SET is_active = 0 WHERE id = ?`, id); err != nil {
		return &fault.IndexError{Op: "delete", Err: err}
	}
	return nil
}

func (s *SQLiteIndex) Query(ctx context.Context, vec embedding.Vector, topK int) ([]Hit, error) {
	if topK < 1 {
		return nil, &fault.IndexError{Op: "query", Err: fmt.Errorf("topK must be >= 1, got %d", topK)}
	}
	if len(vec) != s.dims {
		return nil, &fault.IndexError{Op: "query", Err: fmt.Errorf("query vector has %d dims, index expects %d", len(vec), s.dims)}
	}

	// Active-only scan: inactive trends are excluded before ranking so
	// they can never displace an active trend from the top-K.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, platforms, popularity, hashtags, mood, is_active, embedding
		FROM trend_vectors WHERE is_active = 1`)
	if err != nil {
		return nil, &fault.IndexError{Op: "query", Err: err}
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		hit, stored, err := scanRow(rows)
		if err != nil {
			return nil, &fault.IndexError{Op: "query", Err: err}
		}
		hit.Score = ClampScore(embedding.CosineSimilarity(vec, stored))
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, &fault.IndexError{Op: "query", Err: err}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Meta.Popularity != hits[j].Meta.Popularity {
			return hits[i].Meta.Popularity > hits[j].Meta.Popularity
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// List returns every stored trend vector's hit record with a zero
// score, optionally including deactivated ones. Used by curation
// tooling, not by the matcher.
func (s *SQLiteIndex) List(ctx context.Context, includeInactive bool) ([]Hit, error) {
	q := `SELECT id, name, category, platforms, popularity, hashtags, mood, is_active, embedding
		FROM trend_vectors`
	if !includeInactive {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY popularity DESC, id`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, &fault.IndexError{Op: "query", Err: err}
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		hit, _, err := scanRow(rows)
		if err != nil {
			return nil, &fault.IndexError{Op: "query", Err: err}
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func scanRow(rows *sql.Rows) (Hit, embedding.Vector, error) {
	var (
		hit           Hit
		category      string
		platformsJSON sql.NullString
		hashtagsJSON  sql.NullString
		mood          sql.NullString
		active        int
		embJSON       string
	)
	if err := rows.Scan(&hit.ID, &hit.Meta.Name, &category, &platformsJSON, &hit.Meta.Popularity,
		&hashtagsJSON, &mood, &active, &embJSON); err != nil {
		return Hit{}, nil, err
	}

	hit.Meta.Category = trend.Category(category)
	hit.Meta.Mood = mood.String
	hit.Meta.IsActive = active == 1
	if platformsJSON.Valid && platformsJSON.String != "" {
		json.Unmarshal([]byte(platformsJSON.String), &hit.Meta.Platforms)
	}
	if hashtagsJSON.Valid && hashtagsJSON.String != "" {
		json.Unmarshal([]byte(hashtagsJSON.String), &hit.Meta.Hashtags)
	}

	var stored embedding.Vector
	if err := json.Unmarshal([]byte(embJSON), &stored); err != nil {
		return Hit{}, nil, fmt.Errorf("corrupt embedding for %s: %w", hit.ID, err)
	}
	return hit, stored, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
