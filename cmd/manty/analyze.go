package main

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mantyhq/manty/internal/analysis"
	"github.com/mantyhq/manty/internal/pipeline"
)

var (
	analyzeMediaFlag []string
	analyzeTypeFlag  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze media with the vision model",
	Long: `Analyze runs the vision model over one or more media items and prints
the structured analysis: mood, scene, palette, objects, composition.

Multiple --media flags analyze concurrently with a bounded worker pool.

Examples:
  manty analyze --media ./photo.jpg
  manty analyze --media ./clip.mp4 --type video
  manty analyze --media a.jpg --media b.jpg --media c.jpg`,
	Run: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringArrayVarP(&analyzeMediaFlag, "media", "f", nil, "Media file path or URL (repeatable)")
	analyzeCmd.Flags().StringVarP(&analyzeTypeFlag, "type", "t", "image", "Media type: image or video")
	rootCmd.AddCommand(analyzeCmd)
}

func parseMediaType(s string) analysis.MediaType {
	switch strings.ToLower(s) {
	case "image", "photo":
		return analysis.MediaImage
	case "video":
		return analysis.MediaVideo
	}
	log.Fatal().Str("type", s).Msg("Unknown media type, expected image or video")
	return ""
}

func runAnalyze(cmd *cobra.Command, args []string) {
	if len(analyzeMediaFlag) == 0 {
		log.Fatal().Msg("At least one --media is required")
	}
	mediaType := parseMediaType(analyzeTypeFlag)

	ctx := context.Background()
	d := buildDeps(ctx)
	defer d.shutdown()

	if len(analyzeMediaFlag) == 1 {
		result, err := d.engine.Analyze(ctx, analyzeMediaFlag[0], mediaType)
		if err != nil {
			log.Fatal().Err(err).Str("media", analyzeMediaFlag[0]).Msg("Analysis failed")
		}
		printJSON(result)
		return
	}

	items := make([]pipeline.BatchItem, len(analyzeMediaFlag))
	for i, src := range analyzeMediaFlag {
		items[i] = pipeline.BatchItem{Source: src, MediaType: mediaType}
	}
	results := d.engine.AnalyzeBatch(ctx, items)
	for _, r := range results {
		if r.Err != nil {
			log.Error().Err(r.Err).Str("media", r.Item.Source).Msg("Analysis failed")
			continue
		}
		printJSON(r.Analysis)
	}
}
