package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-ranker/internal/scraper"
)

const (
	app = "job-ranker"
)

type Config struct {
	Resume      string                `mapstructure:"resume"`
	JobsFile    string                `mapstructure:"jobs-file"`
	Database    string                `mapstructure:"database"`
	ExcludeFile string                `mapstructure:"exclude-file"`
	UserAgent   string                `mapstructure:"user-agent"`
	Search      *scraper.SearchParams `mapstructure:"search"`
	Filter      *FilterConfig         `mapstructure:"filter"`
	AI          *AIConfig             `mapstructure:"ai"`
}

type FilterConfig struct {
	Skills    bool     `mapstructure:"skills"`
	Companies []string `mapstructure:"companies"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Top             int           `mapstructure:"top"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`

	// RequestsPerMinute paces Gemini calls, zero disables the limit.
	RequestsPerMinute int `mapstructure:"requests-per-minute"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-ranker scrapes job boards and ranks postings against your resume",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("database", "JOB_RANKER_DATABASE"); err != nil {
		log.Fatalf("binding JOB_RANKER_DATABASE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("database", "jobs.db")
	viper.SetDefault("search.platforms", scraper.Platforms())
	viper.SetDefault("search.limit", 5)
	viper.SetDefault("search.delay", "1s")
	viper.SetDefault("filter.skills", false)
	viper.SetDefault("ai.top", 5)
	viper.SetDefault("ai.gemini.model", "gemini-2.5-pro")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	// The version command works without any config.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// We can't proceed if the config file parsed with error.
	// A missing default config is fine, defaults and env are used then.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Search == nil {
		config.Search = &scraper.SearchParams{}
	}
	if config.Filter == nil {
		config.Filter = &FilterConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}

	return config, nil
}
