// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded
// at compile time, so prompt wording can be tuned without touching Go
// code.

package assets

import (
	_ "embed"
)

// AnalysisSystemPrompt instructs the vision model to return a structured
// JSON analysis of a single media item.
//
//go:embed prompts/analysis-system.txt
var AnalysisSystemPrompt string

// CaptionSystemPrompt instructs the text model to return platform-ready
// caption candidates as a JSON array.
//
//go:embed prompts/caption-system.txt
var CaptionSystemPrompt string
