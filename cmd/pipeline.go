package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-ranker/internal/ai"
	"github.com/spigell/job-ranker/internal/ai/gemini"
	"github.com/spigell/job-ranker/internal/filtering"
	"github.com/spigell/job-ranker/internal/logger"
	"github.com/spigell/job-ranker/internal/postings"
	"github.com/spigell/job-ranker/internal/resume"
	"github.com/spigell/job-ranker/internal/scraper"
	"github.com/spigell/job-ranker/internal/secrets"
	"github.com/spigell/job-ranker/internal/storage"
)

// setup creates the logger and reads the config shared by all commands.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-ranker", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}

func loadResume(config *Config, logger *zap.Logger) (*resume.Features, error) {
	if strings.TrimSpace(config.Resume) == "" {
		return nil, errors.New("resume path is required under the 'resume' key")
	}

	text, err := resume.LoadText(config.Resume)
	if err != nil {
		return nil, err
	}

	features := resume.NewExtractor(resume.WithLogger(logger)).Extract(text)
	logger.Info("resume parsed",
		zap.Strings("skills", features.Skills),
		zap.Strings("education", features.Education),
		zap.Int("experience_years", features.ExperienceYears),
	)

	return features, nil
}

// getPostings reads postings from the jobs file when configured and scrapes
// the job boards otherwise.
func getPostings(ctx context.Context, config *Config, logger *zap.Logger) (*postings.Postings, error) {
	if path := strings.TrimSpace(config.JobsFile); path != "" {
		result, err := postings.FromFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading jobs file: %w", err)
		}
		logger.Info("loaded postings from file", zap.String("filename", path), zap.Int("count", result.Len()))
		return result, nil
	}

	client := scraper.New(ctx, logger)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	logger.Info("starting the search",
		zap.String("query", config.Search.Query),
		zap.String("location", config.Search.Location),
		zap.Strings("platforms", config.Search.Platforms),
	)

	result, err := client.Scrape(config.Search)
	if err != nil {
		return nil, fmt.Errorf("scrape: %w", err)
	}

	logger.Info("getting postings", zap.Int("count", result.Len()))
	return result, nil
}

// lastBatch returns the postings saved by the previous run.
func lastBatch(ctx context.Context, store *storage.Store, logger *zap.Logger) (*postings.Postings, error) {
	if store == nil {
		return nil, errors.New("the database is required to rank the last batch")
	}

	result, err := store.ListPostings(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("loaded postings from the database", zap.Int("count", result.Len()))
	return result, nil
}

func prepareFilters(config *Config) (*filtering.Config, []filtering.Filter) {
	cfg := &filtering.Config{
		Skills:      config.Filter.Skills,
		Companies:   config.Filter.Companies,
		ExcludeFile: config.ExcludeFile,
	}

	steps := filtering.Default(cfg)
	if strings.TrimSpace(config.ExcludeFile) == "" {
		filtering.DisableByName(steps, "exclude_file", "exclude file is not configured")
	}

	return cfg, steps
}

// openStore returns nil when persistence is disabled.
func openStore(ctx context.Context, config *Config, logger *zap.Logger) (*storage.Store, error) {
	path := strings.TrimSpace(config.Database)
	if path == "" {
		logger.Info("database is not configured, bookmarks are disabled")
		return nil, nil
	}

	return storage.Open(ctx, path, logger)
}

func newAIReviewer(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Reviewer, error) {
	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai review is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithAIFields(log, "gemini", cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}
	generator.SetRateLimit(cfg.Gemini.RequestsPerMinute)

	return gemini.NewReviewer(generator, cfg.MinimumFitScore, cfg.Gemini.MaxLogLength, log), nil
}

func logRanked(ranked []*postings.Posting, logger *zap.Logger) {
	for i, p := range ranked {
		logger.Info("ranked posting",
			zap.Int("rank", i+1),
			zap.String("title", p.Title),
			zap.String("company", p.Company),
			zap.String("platform", p.Platform),
			zap.String("url", p.URL),
			zap.Float64("match_score", p.MatchScore),
			zap.String("eligibility", string(p.Eligibility)),
			zap.Bool("bookmarked", p.Bookmarked),
		)
	}
}
