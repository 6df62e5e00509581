// Package analysis turns raw media into a structured description of its
// visual character. The result feeds both trend matching (via its
// canonical text projection) and caption generation.
package analysis

import (
	"fmt"
	"strings"

	"github.com/mantyhq/manty/internal/fault"
)

// MediaType distinguishes the two supported media kinds.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// MediaAnalysis is the structured output of analyzing one media item.
// Confidence values are normalized to [0, 1].
type MediaAnalysis struct {
	MediaID         string    `json:"mediaId"`
	MediaType       MediaType `json:"mediaType"`
	Mood            string    `json:"mood"`
	MoodConfidence  float64   `json:"moodConfidence"`
	SceneType       string    `json:"sceneType"`
	SceneConfidence float64   `json:"sceneConfidence"`
	ColorPalette    []string  `json:"colorPalette"`
	Objects         []string  `json:"objects"`
	Composition     string    `json:"composition"`
	Style           string    `json:"style"`
	Lighting        string    `json:"lighting"`
	Emotions        []string  `json:"emotions"`
}

// Validate checks the analysis invariants. A model response that parses
// as JSON but violates these is still an analysis failure.
func (a *MediaAnalysis) Validate() error {
	if a.Mood == "" {
		return &fault.AnalysisError{Reason: "missing mood"}
	}
	if a.SceneType == "" {
		return &fault.AnalysisError{Reason: "missing scene type"}
	}
	if a.MoodConfidence < 0 || a.MoodConfidence > 1 {
		return &fault.AnalysisError{Reason: fmt.Sprintf("mood confidence %v outside [0,1]", a.MoodConfidence)}
	}
	if a.SceneConfidence < 0 || a.SceneConfidence > 1 {
		return &fault.AnalysisError{Reason: fmt.Sprintf("scene confidence %v outside [0,1]", a.SceneConfidence)}
	}
	if len(a.ColorPalette) == 0 {
		return &fault.AnalysisError{Reason: "empty color palette"}
	}
	return nil
}

// ProjectionText is the canonical textual projection of an analysis used
// for embedding. The field order is fixed so the same analysis always
// produces the same text, which in turn makes matching idempotent.
func (a *MediaAnalysis) ProjectionText() string {
	var sb strings.Builder
	sb.WriteString("mood: ")
	sb.WriteString(a.Mood)
	sb.WriteString(" | scene: ")
	sb.WriteString(a.SceneType)
	if a.Style != "" {
		sb.WriteString(" | style: ")
		sb.WriteString(a.Style)
	}
	if a.Lighting != "" {
		sb.WriteString(" | lighting: ")
		sb.WriteString(a.Lighting)
	}
	if len(a.Objects) > 0 {
		sb.WriteString(" | objects: ")
		sb.WriteString(strings.Join(a.Objects, ", "))
	}
	if len(a.Emotions) > 0 {
		sb.WriteString(" | emotions: ")
		sb.WriteString(strings.Join(a.Emotions, ", "))
	}
	if a.Composition != "" {
		sb.WriteString(" | ")
		sb.WriteString(a.Composition)
	}
	return sb.String()
}
