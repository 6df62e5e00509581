// Command manty analyzes social media content, matches it against a
// curated trend index, and generates platform-ready captions.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mantyhq/manty/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "manty",
	Short: "AI content analysis, trend matching, and caption generation",
	Long: `Manty analyzes photos and videos with a vision model, ranks them
against a curated trend catalog by embedding similarity, and generates
caption variants that respect each platform's structural limits.

Examples:
  manty analyze --media ./photo.jpg
  manty match --media ./photo.jpg --top-k 5
  manty caption --media ./clip.mp4 --type video --platform tiktok --tone playful
  manty trend add --name "Golden Hour Glow" --category lifestyle --mood nostalgic
  manty trend list`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
