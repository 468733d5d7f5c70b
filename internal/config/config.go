// Package config loads application configuration from config.yaml and
// SCOUT_* environment variables, and bootstraps the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Reddit    RedditConfig    `yaml:"reddit" mapstructure:"reddit"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Curator   CuratorConfig   `yaml:"curator" mapstructure:"curator"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Email     EmailConfig     `yaml:"email" mapstructure:"email"`
	Egress    EgressConfig    `yaml:"egress" mapstructure:"egress"`
	Schedule  ScheduleConfig  `yaml:"schedule" mapstructure:"schedule"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RedditConfig configures the listing source and the traction filter.
type RedditConfig struct {
	UserAgent        string   `yaml:"user_agent" mapstructure:"user_agent"`
	Subreddits       []string `yaml:"subreddits" mapstructure:"subreddits"`
	PostLimit        int      `yaml:"post_limit" mapstructure:"post_limit"`
	CommentLimit     int      `yaml:"comment_limit" mapstructure:"comment_limit"`
	MinComments      int      `yaml:"min_comments" mapstructure:"min_comments"`
	MinScore         int      `yaml:"min_score" mapstructure:"min_score"`
	MinUpvoteRatio   float64  `yaml:"min_upvote_ratio" mapstructure:"min_upvote_ratio"`
	FetchConcurrency int      `yaml:"fetch_concurrency" mapstructure:"fetch_concurrency"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CuratorConfig configures the curate stage.
type CuratorConfig struct {
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
	Objective string `yaml:"objective" mapstructure:"objective"`
}

// NotionConfig holds the Notion integration token and report parent page.
type NotionConfig struct {
	Token        string `yaml:"token" mapstructure:"token"`
	ParentPageID string `yaml:"parent_page_id" mapstructure:"parent_page_id"`
}

// EmailConfig holds SMTP settings for the email channel.
type EmailConfig struct {
	Host       string   `yaml:"host" mapstructure:"host"`
	Port       int      `yaml:"port" mapstructure:"port"`
	Username   string   `yaml:"username" mapstructure:"username"`
	Password   string   `yaml:"password" mapstructure:"password"`
	From       string   `yaml:"from" mapstructure:"from"`
	Recipients []string `yaml:"recipients" mapstructure:"recipients"`
}

// EgressConfig selects publication channels.
type EgressConfig struct {
	Channel string `yaml:"channel" mapstructure:"channel"`
}

// ScheduleConfig configures the agent's jobs. The cleanup job first fires
// CleanupOffset after startup so it trails the first pipeline pass.
type ScheduleConfig struct {
	PipelineInterval time.Duration `yaml:"pipeline_interval" mapstructure:"pipeline_interval"`
	CleanupInterval  time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
	CleanupOffset    time.Duration `yaml:"cleanup_offset" mapstructure:"cleanup_offset"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "market_scout.db")
	v.SetDefault("reddit.user_agent", "market-scout/1.0")
	v.SetDefault("reddit.subreddits", []string{"ghana"})
	v.SetDefault("reddit.post_limit", 100)
	v.SetDefault("reddit.comment_limit", 80)
	v.SetDefault("reddit.min_comments", 50)
	v.SetDefault("reddit.min_score", 75)
	v.SetDefault("reddit.min_upvote_ratio", 0.8)
	v.SetDefault("reddit.fetch_concurrency", 4)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("curator.batch_size", 10)
	v.SetDefault("egress.channel", "all")
	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", 587)
	v.SetDefault("schedule.pipeline_interval", "336h")
	v.SetDefault("schedule.cleanup_interval", "336h")
	v.SetDefault("schedule.cleanup_offset", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that every credential the configured channels need is
// present. Called before any stage runs so a bad deployment fails at startup.
func (c *Config) Validate() error {
	if c.Store.DatabaseURL == "" {
		return eris.New("config: store.database_url is required")
	}
	if c.Anthropic.Key == "" {
		return eris.New("config: anthropic.key is required")
	}
	if len(c.Reddit.Subreddits) == 0 {
		return eris.New("config: reddit.subreddits must not be empty")
	}

	channel := c.Egress.Channel
	if channel == "notion" || channel == "all" {
		if c.Notion.Token == "" || c.Notion.ParentPageID == "" {
			return eris.New("config: notion.token and notion.parent_page_id are required for the notion channel")
		}
	}
	if channel == "email" || channel == "all" {
		switch {
		case c.Email.From == "":
			return eris.New("config: email.from is required for the email channel")
		case len(c.Email.Recipients) == 0:
			return eris.New("config: email.recipients must not be empty for the email channel")
		case c.Email.Username == "" || c.Email.Password == "":
			return eris.New("config: email.username and email.password are required for the email channel")
		}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
