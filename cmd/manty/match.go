package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mantyhq/manty/internal/match"
)

var (
	matchMediaFlag string
	matchTypeFlag  string
	matchQueryFlag string
	matchTopKFlag  int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match media or a text query against the trend index",
	Long: `Match analyzes a media item (or takes a raw text query) and ranks the
trend catalog by embedding similarity. Results are ordered by score,
with trend popularity breaking ties.

Examples:
  manty match --media ./photo.jpg --top-k 5
  manty match --query "moody rainy city nights"`,
	Run: runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchMediaFlag, "media", "f", "", "Media file path or URL")
	matchCmd.Flags().StringVarP(&matchTypeFlag, "type", "t", "image", "Media type: image or video")
	matchCmd.Flags().StringVarP(&matchQueryFlag, "query", "q", "", "Free-text query instead of media")
	matchCmd.Flags().IntVarP(&matchTopKFlag, "top-k", "k", match.DefaultTopK, "Number of trends to return")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) {
	if matchMediaFlag == "" && matchQueryFlag == "" {
		log.Fatal().Msg("Either --media or --query is required")
	}

	ctx := context.Background()
	d := buildDeps(ctx)
	defer d.shutdown()

	if matchQueryFlag != "" {
		matches, err := d.matcher.MatchText(ctx, matchQueryFlag, matchTopKFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Text match failed")
		}
		printJSON(matches)
		return
	}

	a, err := d.engine.Analyze(ctx, matchMediaFlag, parseMediaType(matchTypeFlag))
	if err != nil {
		log.Fatal().Err(err).Str("media", matchMediaFlag).Msg("Analysis failed")
	}
	matches, err := d.engine.Match(ctx, &a, matchTopKFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Trend match failed")
	}
	printJSON(matches)
}
