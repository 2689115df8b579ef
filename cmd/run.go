package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/ai"
	"github.com/spigell/job-ranker/internal/filtering"
	"github.com/spigell/job-ranker/internal/postings"
	"github.com/spigell/job-ranker/internal/ranking"
	"github.com/spigell/job-ranker/internal/resume"
	"github.com/spigell/job-ranker/internal/storage"
)

const (
	PromptBookmark            = "Bookmark a posting"
	PromptReportByPlatform    = "Report by platform"
	PromptPostingsToFile      = "Dump postings to file"
	PromptAppendToExcludeFile = "Append all postings to exclude file"
	PromptExit                = "Exit"
	PromptBack                = "back"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Rank job postings against the resume",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for actions, print the ranked list and exit")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with postings to exclude. Default is unset.")
	runCmd.Flags().StringP("jobs-file", "f", "", "read postings from a JSON file instead of scraping")
	runCmd.Flags().Bool("last", false, "rank the postings stored by the previous run instead of scraping")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("jobs-file", runCmd.Flags().Lookup("jobs-file"))
}

// session is the state the interactive loop works on.
type session struct {
	logger   *zap.Logger
	config   *Config
	store    *storage.Store
	postings *postings.Postings
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, config := setup()

	features, err := loadResume(config, logger)
	if err != nil {
		logger.Fatal("loading the resume", zap.Error(err))
	}

	store, err := openStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening the database", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	var found *postings.Postings
	if cmd.Flag("last").Value.String() == "true" {
		found, err = lastBatch(ctx, store, logger)
	} else {
		found, err = getPostings(ctx, config, logger)
	}
	if err != nil {
		logger.Fatal("getting available postings", zap.Error(err))
	}

	if found.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	filterCfg, steps := prepareFilters(config)
	for _, status := range filtering.Describe(steps) {
		logger.Debug("filter", zap.String("name", status.Name), zap.Bool("enabled", status.Enabled), zap.String("reason", status.Reason))
	}

	filtered, err := filtering.Run(ctx, filterCfg, filtering.Deps{Logger: logger, Resume: features}, steps, found)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if filtered.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings left after filters"))
		return
	}

	if store != nil {
		if err := store.ReplacePostings(ctx, filtered); err != nil {
			logger.Fatal("storing postings", zap.Error(err))
		}
	}

	ranked := rank(ctx, config, features, filtered, store, logger)

	logRanked(ranked.Items, logger)

	if cmd.Flag("auto-approve").Value.String() == "true" {
		return
	}

	s := &session{
		logger:   logger,
		config:   config,
		store:    store,
		postings: ranked,
	}

	for {
		items := []string{PromptBookmark, PromptReportByPlatform, PromptPostingsToFile}
		if config.ExcludeFile != "" && s.postings.Len() != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}
		items = append(items, PromptExit)

		prompt := promptui.Select{
			Label: "What next?",
			Items: items,
		}

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current list of postings", zap.Int("count", s.postings.Len()))

		if err := s.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// rank scores the postings, marks the bookmarked ones and runs the optional
// AI review over the top of the list.
func rank(ctx context.Context, config *Config, features *resume.Features, filtered *postings.Postings, store *storage.Store, logger *zap.Logger) *postings.Postings {
	ranked := &postings.Postings{Items: ranking.New(logger).Rank(features, filtered.Items)}

	if store != nil {
		if err := store.MarkBookmarked(ctx, ranked.Items); err != nil {
			logger.Warn("reading bookmarks", zap.Error(err))
		}
	}

	if !config.AI.Enabled {
		return ranked
	}

	reviewer, err := newAIReviewer(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("skipping AI review", zap.Error(err))
		return ranked
	}

	reviewed := ai.ReviewTop(ctx, reviewer, features, ranked.Items, config.AI.Top, logger)
	logger.Info("ai review finished", zap.Int("reviewed", reviewed))

	return ranked
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptBookmark:
		return s.bookmark(ctx)
	case PromptReportByPlatform:
		pretty, _ := json.MarshalIndent(s.postings.ReportByPlatform(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("postings count", s.postings.Len()))
		return nil
	case PromptPostingsToFile:
		filename, err := s.postings.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return s.appendToExcludeFile()
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) bookmark(ctx context.Context) error {
	if s.store == nil {
		s.logger.Warn("bookmarks are disabled", zap.String("hint", "set the 'database' key in the configuration file"))
		return nil
	}

	for {
		items := make([]string, 0, s.postings.Len()+1)
		for _, p := range s.postings.Items {
			mark := " "
			if p.Bookmarked {
				mark = "*"
			}
			items = append(items, mark+" "+p.Label())
		}

		postingPrompt := promptui.Select{
			Label: "Choose a posting and press ENTER (* is bookmarked)",
			Items: append(items, PromptBack),
			Size:  10,
		}

		idx, selected, err := postingPrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack || idx >= s.postings.Len() {
			return nil
		}

		posting := s.postings.Items[idx]
		status, err := s.store.ToggleBookmark(ctx, posting.URL)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.logger.Warn("posting is not stored", zap.String("url", posting.URL))
				continue
			}
			return err
		}

		posting.Bookmarked = status == storage.BookmarkAdded
		s.logger.Info("bookmark updated",
			zap.String("title", strings.TrimSpace(posting.Title)),
			zap.String("status", string(status)),
		)
	}
}

func (s *session) appendToExcludeFile() error {
	excludeFile := s.config.ExcludeFile

	excluded, err := postings.GetExcludedFromFile(excludeFile)
	if err != nil {
		return err
	}

	excluded.Append(s.postings.ToExcluded())

	if err = excluded.ToFile(excludeFile); err != nil {
		return err
	}

	s.logger.Info("appended to exclude file", zap.String("filename", excludeFile))

	s.postings.Exclude(excluded.URLs())
	return nil
}
