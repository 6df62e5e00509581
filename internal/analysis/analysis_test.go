package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mantyhq/manty/internal/fault"
)

func validAnalysis() MediaAnalysis {
	return MediaAnalysis{
		MediaType:       MediaImage,
		Mood:            "calm",
		MoodConfidence:  0.9,
		SceneType:       "beach",
		SceneConfidence: 0.85,
		ColorPalette:    []string{"#4A90E2", "#F5E6C8"},
		Objects:         []string{"ocean", "sand"},
		Composition:     "wide shot with horizon in upper third",
		Style:           "minimalist",
		Lighting:        "golden-hour",
		Emotions:        []string{"serenity"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MediaAnalysis)
		wantOK bool
	}{
		{"valid", func(a *MediaAnalysis) {}, true},
		{"missing mood", func(a *MediaAnalysis) { a.Mood = "" }, false},
		{"missing scene", func(a *MediaAnalysis) { a.SceneType = "" }, false},
		{"mood confidence above one", func(a *MediaAnalysis) { a.MoodConfidence = 1.2 }, false},
		{"negative scene confidence", func(a *MediaAnalysis) { a.SceneConfidence = -0.1 }, false},
		{"empty palette", func(a *MediaAnalysis) { a.ColorPalette = nil }, false},
		{"confidence at bounds", func(a *MediaAnalysis) { a.MoodConfidence = 0; a.SceneConfidence = 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAnalysis()
			tt.mutate(&a)
			err := a.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.wantOK {
				var analysisErr *fault.AnalysisError
				if !errors.As(err, &analysisErr) {
					t.Errorf("Validate() = %v, want AnalysisError", err)
				}
			}
		})
	}
}

func TestProjectionTextDeterministic(t *testing.T) {
	a := validAnalysis()
	first := a.ProjectionText()
	for i := 0; i < 5; i++ {
		if got := a.ProjectionText(); got != first {
			t.Fatalf("projection changed between calls: %q vs %q", first, got)
		}
	}
	for _, want := range []string{"mood: calm", "scene: beach", "ocean", "serenity"} {
		if !strings.Contains(first, want) {
			t.Errorf("projection missing %q: %s", want, first)
		}
	}
}

func TestProjectionTextOmitsEmptyFields(t *testing.T) {
	a := validAnalysis()
	a.Style = ""
	a.Emotions = nil
	got := a.ProjectionText()
	if strings.Contains(got, "style:") {
		t.Errorf("projection contains empty style section: %s", got)
	}
	if strings.Contains(got, "emotions:") {
		t.Errorf("projection contains empty emotions section: %s", got)
	}
}

type stubVision struct {
	result MediaAnalysis
	err    error
}

func (s *stubVision) Describe(ctx context.Context, source string, mediaType MediaType) (MediaAnalysis, error) {
	return s.result, s.err
}

func TestAnalyzerStampsIDAndValidates(t *testing.T) {
	a := NewAnalyzer(&stubVision{result: validAnalysis()})

	got, err := a.AnalyzeWithID(context.Background(), "media-42", "photo.jpg", MediaImage)
	if err != nil {
		t.Fatalf("AnalyzeWithID: %v", err)
	}
	if got.MediaID != "media-42" {
		t.Errorf("MediaID = %q, want media-42", got.MediaID)
	}

	fresh, err := a.Analyze(context.Background(), "photo.jpg", MediaImage)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if fresh.MediaID == "" {
		t.Error("Analyze did not assign a media ID")
	}
}

func TestAnalyzerRejectsInvalidModelOutput(t *testing.T) {
	bad := validAnalysis()
	bad.MoodConfidence = 3.5
	a := NewAnalyzer(&stubVision{result: bad})

	var analysisErr *fault.AnalysisError
	if _, err := a.Analyze(context.Background(), "photo.jpg", MediaImage); !errors.As(err, &analysisErr) {
		t.Fatalf("got %v, want AnalysisError", err)
	}
}

func TestGeminiVisionWithoutClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, []byte("not a real jpeg"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	v := NewGeminiVision(nil, "")
	_, err := v.Describe(context.Background(), path, MediaImage)
	var analysisErr *fault.AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("got %v, want AnalysisError for unconfigured client", err)
	}
}

func TestMIMETypeFor(t *testing.T) {
	tests := []struct {
		source    string
		mediaType MediaType
		want      string
	}{
		{"beach.jpg", MediaImage, "image/jpeg"},
		{"clip.MOV", MediaVideo, "video/quicktime"},
		{"https://cdn.example.com/a.png?sig=abc", MediaImage, "image/png"},
		{"no-extension", MediaImage, "image/jpeg"},
		{"no-extension", MediaVideo, "video/mp4"},
	}
	for _, tt := range tests {
		got, err := mimeTypeFor(tt.source, tt.mediaType)
		if err != nil {
			t.Errorf("mimeTypeFor(%q): %v", tt.source, err)
			continue
		}
		if got != tt.want {
			t.Errorf("mimeTypeFor(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}
