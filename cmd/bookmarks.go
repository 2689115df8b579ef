package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List bookmarked postings",
	Run: func(cmd *cobra.Command, _ []string) {
		bookmarks(cmd)
	},
}

func init() {
	rootCmd.AddCommand(bookmarksCmd)
}

func bookmarks(cmd *cobra.Command) {
	ctx := context.Background()

	logger, config := setup()

	store, err := openStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening the database", zap.Error(err))
	}
	if store == nil {
		logger.Fatal("database is required to list bookmarks")
	}
	defer store.Close()

	saved, err := store.ListBookmarks(ctx)
	if err != nil {
		logger.Fatal("listing bookmarks", zap.Error(err))
	}

	logger.Info("bookmarked postings", zap.Int("count", saved.Len()))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(saved); err != nil {
		logger.Fatal("printing bookmarks", zap.Error(err))
	}
}
