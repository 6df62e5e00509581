package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mantyhq/manty/internal/caption"
	"github.com/mantyhq/manty/internal/fault"
	"github.com/mantyhq/manty/internal/match"
	"github.com/mantyhq/manty/internal/platform"
)

var (
	captionMediaFlag    string
	captionTypeFlag     string
	captionPlatformFlag string
	captionToneFlag     string
	captionCountFlag    int
	captionNoTrendsFlag bool
)

var captionCmd = &cobra.Command{
	Use:   "caption",
	Short: "Generate platform-ready captions for a media item",
	Long: `Caption analyzes a media item, matches it against the trend index, and
generates caption variants that satisfy the target platform's character
and hashtag limits. Pass --no-trends to caption without trend context.

Examples:
  manty caption --media ./photo.jpg --platform instagram --tone casual
  manty caption --media ./clip.mp4 --type video --platform tiktok --tone playful --count 5`,
	Run: runCaption,
}

func init() {
	captionCmd.Flags().StringVarP(&captionMediaFlag, "media", "f", "", "Media file path or URL")
	captionCmd.Flags().StringVarP(&captionTypeFlag, "type", "t", "image", "Media type: image or video")
	captionCmd.Flags().StringVarP(&captionPlatformFlag, "platform", "p", "instagram", "Target platform")
	captionCmd.Flags().StringVar(&captionToneFlag, "tone", string(caption.ToneCasual), "Caption tone: casual, professional, playful, inspirational, promotional")
	captionCmd.Flags().IntVarP(&captionCountFlag, "count", "n", caption.DefaultCount, "Number of caption variants")
	captionCmd.Flags().BoolVar(&captionNoTrendsFlag, "no-trends", false, "Skip trend matching")
	rootCmd.AddCommand(captionCmd)
}

func runCaption(cmd *cobra.Command, args []string) {
	if captionMediaFlag == "" {
		log.Fatal().Msg("--media is required")
	}

	ctx := context.Background()
	d := buildDeps(ctx)
	defer d.shutdown()

	a, err := d.engine.Analyze(ctx, captionMediaFlag, parseMediaType(captionTypeFlag))
	if err != nil {
		log.Fatal().Err(err).Str("media", captionMediaFlag).Msg("Analysis failed")
	}

	var trendContext []match.Match
	if !captionNoTrendsFlag {
		trendContext, err = d.engine.Match(ctx, &a, match.DefaultTopK)
		if err != nil {
			// Captions degrade gracefully without trend context.
			log.Warn().Err(err).Msg("Trend match failed, generating captions without trend context")
			trendContext = nil
		}
	}

	result, err := d.engine.GenerateCaptions(
		ctx, &a, platform.ID(captionPlatformFlag), caption.Tone(captionToneFlag), trendContext, captionCountFlag)
	if err != nil {
		var constraint *fault.ConstraintError
		if errors.As(err, &constraint) {
			log.Warn().
				Int("requested", constraint.Requested).
				Int("produced", constraint.Produced).
				Msg("Returning partial caption set")
		} else {
			log.Fatal().Err(err).Msg("Caption generation failed")
		}
	}
	printJSON(result)
}
