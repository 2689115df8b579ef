package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the job boards and dump postings to a file",
	Run: func(_ *cobra.Command, _ []string) {
		scrape()
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func scrape() {
	ctx := context.Background()

	logger, config := setup()
	// the jobs file only makes sense for ranking
	config.JobsFile = ""

	found, err := getPostings(ctx, config, logger)
	if err != nil {
		logger.Fatal("getting available postings", zap.Error(err))
	}

	dropped := found.Dedup()
	logger.Info("scraped postings", zap.Int("count", found.Len()), zap.Int("duplicates", len(dropped)))

	filename, err := found.DumpToTmpFile()
	if err != nil {
		logger.Fatal("dump results to file", zap.Error(err))
	}
	logger.Info("dumping result to file", zap.String("filename", filename))
}
