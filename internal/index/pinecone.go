package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mantyhq/manty/internal/embedding"
	"github.com/mantyhq/manty/internal/fault"
	"github.com/mantyhq/manty/internal/metrics"
	"github.com/mantyhq/manty/internal/platform"
	"github.com/mantyhq/manty/internal/trend"
)

// PineconeIndex talks to a Pinecone serverless index over its data-plane
// HTTP API. The host is index-specific (from the Pinecone console), not
// the control-plane endpoint.
type PineconeIndex struct {
	host   string
	apiKey string
	dims   int
	client *http.Client
}

// NewPineconeIndex builds a client for the index served at host.
func NewPineconeIndex(host, apiKey string, dims int) (*PineconeIndex, error) {
	if host == "" {
		return nil, fmt.Errorf("pinecone index host is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("pinecone api key is required")
	}
	if dims <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dims)
	}
	if !strings.HasPrefix(host, "http") {
		host = "https://" + host
	}
	return &PineconeIndex{
		host:   strings.TrimRight(host, "/"),
		apiKey: apiKey,
		dims:   dims,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (p *PineconeIndex) Dims() int { return p.dims }

type pineconeVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type pineconeQueryRequest struct {
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	IncludeMetadata bool           `json:"includeMetadata"`
	Filter          map[string]any `json:"filter,omitempty"`
}

type pineconeQueryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

func (p *PineconeIndex) Upsert(ctx context.Context, id string, vec embedding.Vector, meta Metadata) error {
	if id == "" {
		return &fault.IndexError{Op: "upsert", Err: fmt.Errorf("id is required")}
	}
	if len(vec) != p.dims {
		return &fault.IndexError{Op: "upsert", Err: fmt.Errorf("vector has %d dims, index expects %d", len(vec), p.dims)}
	}
	if err := meta.Validate(); err != nil {
		return &fault.IndexError{Op: "upsert", Err: err}
	}

	rec := metrics.ForOperation("PineconeUpsert")
	defer rec.Flush()
	start := time.Now()

	body := map[string]any{
		"vectors": []pineconeVector{{ID: id, Values: vec, Metadata: metaToPinecone(meta)}},
	}
	err := p.post(ctx, "/vectors/upsert", body, nil)
	rec.Latency("UpsertLatency", time.Since(start))
	if err != nil {
		rec.Count("UpsertFailure")
		return &fault.IndexError{Op: "upsert", Err: err}
	}
	log.Debug().Str("id", id).Str("name", meta.Name).Msg("Trend vector upserted to Pinecone")
	return nil
}

func (p *PineconeIndex) Delete(ctx context.Context, id string) error {
	body := map[string]any{"ids": []string{id}}
	if err := p.post(ctx, "/vectors/delete", body, nil); err != nil {
		return &fault.IndexError{Op: "delete", Err: err}
	}
	return nil
}

func (p *PineconeIndex) Query(ctx context.Context, vec embedding.Vector, topK int) ([]Hit, error) {
	if topK < 1 {
		return nil, &fault.IndexError{Op: "query", Err: fmt.Errorf("topK must be >= 1, got %d", topK)}
	}
	if len(vec) != p.dims {
		return nil, &fault.IndexError{Op: "query", Err: fmt.Errorf("query vector has %d dims, index expects %d", len(vec), p.dims)}
	}

	rec := metrics.ForOperation("PineconeQuery")
	defer rec.Flush()
	start := time.Now()

	req := pineconeQueryRequest{
		Vector:          vec,
		TopK:            topK,
		IncludeMetadata: true,
		// Server-side filter so inactive trends never consume topK slots.
		Filter: map[string]any{"isActive": map[string]any{"$eq": true}},
	}
	var resp pineconeQueryResponse
	err := p.post(ctx, "/query", req, &resp)
	rec.Latency("QueryLatency", time.Since(start))
	if err != nil {
		rec.Count("QueryFailure")
		return nil, &fault.IndexError{Op: "query", Err: err}
	}
	rec.Metric("QueryMatches", float64(len(resp.Matches)), metrics.UnitCount)

	hits := make([]Hit, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		hit := Hit{ID: m.ID, Score: ClampScore(m.Score), Meta: metaFromPinecone(m.Metadata)}
		if !hit.Meta.IsActive {
			continue
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (p *PineconeIndex) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone %s returned %d: %s", path, resp.StatusCode, truncateBody(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func truncateBody(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

// Pinecone metadata values must be strings, numbers, booleans, or
// string lists; nested objects are rejected, so Metadata is flattened.
func metaToPinecone(m Metadata) map[string]any {
	out := map[string]any{
		"name":       m.Name,
		"category":   string(m.Category),
		"popularity": m.Popularity,
		"isActive":   m.IsActive,
	}
	if m.Mood != "" {
		out["mood"] = m.Mood
	}
	if len(m.Platforms) > 0 {
		ps := make([]string, len(m.Platforms))
		for i, p := range m.Platforms {
			ps[i] = string(p)
		}
		out["platforms"] = ps
	}
	if len(m.Hashtags) > 0 {
		out["hashtags"] = m.Hashtags
	}
	return out
}

func metaFromPinecone(raw map[string]any) Metadata {
	m := Metadata{
		Name:     str(raw["name"]),
		Category: trend.Category(str(raw["category"])),
		Mood:     str(raw["mood"]),
	}
	if v, ok := raw["popularity"].(float64); ok {
		m.Popularity = int(v)
	}
	if v, ok := raw["isActive"].(bool); ok {
		m.IsActive = v
	}
	for _, s := range strList(raw["platforms"]) {
		m.Platforms = append(m.Platforms, platform.ID(s))
	}
	m.Hashtags = strList(raw["hashtags"])
	return m
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
