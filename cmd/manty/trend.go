package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mantyhq/manty/internal/index"
	"github.com/mantyhq/manty/internal/platform"
	"github.com/mantyhq/manty/internal/trend"
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Curate the trend index",
}

var (
	trendNameFlag        string
	trendCategoryFlag    string
	trendPlatformsFlag   []string
	trendPopularityFlag  int
	trendHashtagsFlag    []string
	trendMoodFlag        string
	trendDescriptionFlag string
	trendFileFlag        string
)

var trendAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Embed and index a trend",
	Long: `Add validates a trend, embeds its descriptive text, and upserts it
into the index. Fields come from flags, or from a JSON file with --file
(an array of trend objects indexes them all).

Examples:
  manty trend add --name "Golden Hour Glow" --category lifestyle --mood nostalgic \
      --platform instagram --platform tiktok --popularity 75 --hashtag "#goldenhour"
  manty trend add --file ./trends.json`,
	Run: runTrendAdd,
}

var trendListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed trends",
	Run:   runTrendList,
}

var trendRmHardFlag bool

var trendRmCmd = &cobra.Command{
	Use:   "rm <trend-id>",
	Short: "Deactivate (or with --hard, delete) a trend",
	Args:  cobra.ExactArgs(1),
	Run:   runTrendRm,
}

var trendListAllFlag bool

func init() {
	trendAddCmd.Flags().StringVar(&trendNameFlag, "name", "", "Trend name")
	trendAddCmd.Flags().StringVar(&trendCategoryFlag, "category", "", "Trend category")
	trendAddCmd.Flags().StringArrayVar(&trendPlatformsFlag, "platform", nil, "Platform the trend applies to (repeatable)")
	trendAddCmd.Flags().IntVar(&trendPopularityFlag, "popularity", 50, "Popularity score (non-negative)")
	trendAddCmd.Flags().StringArrayVar(&trendHashtagsFlag, "hashtag", nil, "Associated hashtag (repeatable)")
	trendAddCmd.Flags().StringVar(&trendMoodFlag, "mood", "", "Trend mood")
	trendAddCmd.Flags().StringVar(&trendDescriptionFlag, "description", "", "Trend description")
	trendAddCmd.Flags().StringVar(&trendFileFlag, "file", "", "JSON file containing an array of trends")

	trendListCmd.Flags().BoolVarP(&trendListAllFlag, "all", "a", false, "Include deactivated trends")
	trendRmCmd.Flags().BoolVar(&trendRmHardFlag, "hard", false, "Delete the vector instead of deactivating")

	trendCmd.AddCommand(trendAddCmd, trendListCmd, trendRmCmd)
	rootCmd.AddCommand(trendCmd)
}

func runTrendAdd(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	d := buildDeps(ctx)
	defer d.shutdown()

	var trends []*trend.Trend
	if trendFileFlag != "" {
		data, err := os.ReadFile(trendFileFlag)
		if err != nil {
			log.Fatal().Err(err).Str("file", trendFileFlag).Msg("Failed to read trends file")
		}
		if err := json.Unmarshal(data, &trends); err != nil {
			log.Fatal().Err(err).Msg("Failed to parse trends file")
		}
	} else {
		if trendNameFlag == "" || trendCategoryFlag == "" {
			log.Fatal().Msg("--name and --category are required (or use --file)")
		}
		platforms := make([]platform.ID, len(trendPlatformsFlag))
		for i, p := range trendPlatformsFlag {
			platforms[i] = platform.ID(strings.ToLower(p))
		}
		trends = []*trend.Trend{{
			Name:        trendNameFlag,
			Category:    trend.Category(strings.ToLower(trendCategoryFlag)),
			Platforms:   platforms,
			Popularity:  trendPopularityFlag,
			Hashtags:    trendHashtagsFlag,
			Mood:        trendMoodFlag,
			Description: trendDescriptionFlag,
			IsActive:    true,
		}}
	}

	for _, t := range trends {
		if err := d.indexer.Add(ctx, t); err != nil {
			log.Fatal().Err(err).Str("name", t.Name).Msg("Failed to index trend")
		}
	}
	log.Info().Int("count", len(trends)).Msg("Trends indexed")
}

func runTrendList(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	d := buildDeps(ctx)
	defer d.shutdown()

	lister, ok := d.idx.(interface {
		List(ctx context.Context, includeInactive bool) ([]index.Hit, error)
	})
	if !ok {
		log.Fatal().Str("provider", d.cfg.IndexProvider).Msg("Index provider does not support listing")
	}
	hits, err := lister.List(ctx, trendListAllFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list trends")
	}
	printJSON(hits)
}

func runTrendRm(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	d := buildDeps(ctx)
	defer d.shutdown()
	id := args[0]

	if trendRmHardFlag {
		if err := d.idx.Delete(ctx, id); err != nil {
			log.Fatal().Err(err).Str("id", id).Msg("Failed to delete trend")
		}
		log.Info().Str("id", id).Msg("Trend deleted")
		return
	}

	deactivator, ok := d.idx.(interface {
		Deactivate(ctx context.Context, id string) error
	})
	if !ok {
		log.Fatal().Str("provider", d.cfg.IndexProvider).Msg("Index provider does not support deactivation; use --hard")
	}
	if err := deactivator.Deactivate(ctx, id); err != nil {
		log.Fatal().Err(err).Str("id", id).Msg("Failed to deactivate trend")
	}
	log.Info().Str("id", id).Msg("Trend deactivated")
}
