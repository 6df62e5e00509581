package trend

import (
	"strings"
	"testing"

	"github.com/mantyhq/manty/internal/platform"
)

func validTrend() Trend {
	return Trend{
		ID:          "trend-1",
		Name:        "Golden Hour Beach",
		Category:    CategoryTravel,
		Platforms:   []platform.ID{platform.Instagram, platform.TikTok},
		Popularity:  87,
		Hashtags:    []string{"#goldenhour", "#beachlife"},
		Colors:      []string{"#FFD700", "#4A90E2"},
		Mood:        "happy",
		Description: "Warm sunset beach content with saturated golden tones",
		IsActive:    true,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Trend)
		wantErr bool
	}{
		{"valid", func(*Trend) {}, false},
		{"missing id", func(tr *Trend) { tr.ID = "" }, true},
		{"missing name", func(tr *Trend) { tr.Name = "" }, true},
		{"unknown category", func(tr *Trend) { tr.Category = "memes" }, true},
		{"negative popularity", func(tr *Trend) { tr.Popularity = -1 }, true},
		{"unknown platform", func(tr *Trend) { tr.Platforms = []platform.ID{"vine"} }, true},
		{"no platforms ok", func(tr *Trend) { tr.Platforms = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTrend()
			tt.mutate(&tr)
			err := tr.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !ValidCategory(c) {
			t.Errorf("ValidCategory(%s) = false for fixed category", c)
		}
	}
	if ValidCategory("astrology") {
		t.Error("ValidCategory accepted an unknown category")
	}
}

func TestEmbeddingText_Deterministic(t *testing.T) {
	tr := validTrend()
	first := tr.EmbeddingText()
	second := tr.EmbeddingText()
	if first != second {
		t.Errorf("EmbeddingText not deterministic: %q vs %q", first, second)
	}
	for _, want := range []string{"Golden Hour Beach", "travel", "happy", "#goldenhour"} {
		if !strings.Contains(first, want) {
			t.Errorf("EmbeddingText missing %q: %s", want, first)
		}
	}
}

func TestEmbeddingText_OmitsEmptyFields(t *testing.T) {
	tr := validTrend()
	tr.Mood = ""
	tr.Description = ""
	tr.Hashtags = nil
	text := tr.EmbeddingText()
	if strings.Contains(text, "mood:") {
		t.Errorf("EmbeddingText should omit empty mood: %s", text)
	}
	if text != "Golden Hour Beach | travel" {
		t.Errorf("EmbeddingText = %q", text)
	}
}
