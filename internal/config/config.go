package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "THREATFEED_CONFIG"
	openAIAPIKeyEnv  = "OPENAI_API_KEY"
	openAIModelEnv   = "OPENAI_MODEL"
	historyPathEnv   = "THREATFEED_HISTORY"
	outputPathEnv    = "THREATFEED_OUTPUT"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Feeds         []string           `yaml:"feeds"`
	WindowHours   int                `yaml:"windowHours"`
	History       HistoryConfig      `yaml:"history"`
	Output        OutputConfig       `yaml:"output"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Summarizer    SummarizerConfig   `yaml:"summarizer"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// Window resolves the recency cutoff as a duration.
func (c Config) Window() time.Duration {
	hours := c.WindowHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// HistoryConfig describes the bounded archive snapshot.
type HistoryConfig struct {
	Path       string `yaml:"path"`
	MaxEntries int    `yaml:"maxEntries"`
}

// OutputConfig describes where the rendered report is written.
type OutputConfig struct {
	Path  string `yaml:"path"`
	Title string `yaml:"title"`
}

// SchedulerConfig defines how often the pipeline should run.
type SchedulerConfig struct {
	IntervalHours int `yaml:"intervalHours"`
}

// Interval resolves the run cadence, defaulting to daily.
func (s SchedulerConfig) Interval() time.Duration {
	if s.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.IntervalHours) * time.Hour
}

// SummarizerConfig defines how to contact the OpenAI-compatible API and how
// calls are paced.
type SummarizerConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"apiKey"`
	PacingSeconds  int    `yaml:"pacingSeconds"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	SummaryWords   int    `yaml:"summaryWords"`
}

// PacingInterval resolves the minimum spacing between summarization calls.
func (s SummarizerConfig) PacingInterval() time.Duration {
	if s.PacingSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.PacingSeconds) * time.Second
}

// Timeout resolves the per-call deadline for summarization requests.
func (s SummarizerConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Feeds) == 0 {
		cfg.Feeds = defaultConfig().Feeds
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.Summarizer.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.Summarizer.Model = v
	}
	if v := os.Getenv(historyPathEnv); v != "" {
		c.History.Path = v
	}
	if v := os.Getenv(outputPathEnv); v != "" {
		c.Output.Path = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.WindowHours > 0 {
		base.WindowHours = override.WindowHours
	}

	if override.History.Path != "" {
		base.History.Path = override.History.Path
	}
	if override.History.MaxEntries > 0 {
		base.History.MaxEntries = override.History.MaxEntries
	}

	if override.Output.Path != "" {
		base.Output.Path = override.Output.Path
	}
	if override.Output.Title != "" {
		base.Output.Title = override.Output.Title
	}

	if override.Scheduler.IntervalHours > 0 {
		base.Scheduler.IntervalHours = override.Scheduler.IntervalHours
	}

	if override.Summarizer.Endpoint != "" {
		base.Summarizer.Endpoint = override.Summarizer.Endpoint
	}
	if override.Summarizer.Model != "" {
		base.Summarizer.Model = override.Summarizer.Model
	}
	if override.Summarizer.APIKey != "" {
		base.Summarizer.APIKey = override.Summarizer.APIKey
	}
	if override.Summarizer.PacingSeconds > 0 {
		base.Summarizer.PacingSeconds = override.Summarizer.PacingSeconds
	}
	if override.Summarizer.TimeoutSeconds > 0 {
		base.Summarizer.TimeoutSeconds = override.Summarizer.TimeoutSeconds
	}
	if override.Summarizer.SummaryWords > 0 {
		base.Summarizer.SummaryWords = override.Summarizer.SummaryWords
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Feeds: []string{
			"https://feeds.feedburner.com/TheHackersNews",
			"https://www.bleepingcomputer.com/feed/",
			"https://www.cisa.gov/uscert/ncas/alerts.xml",
		},
		WindowHours: 24,
		History: HistoryConfig{
			Path:       "news_archive.json",
			MaxEntries: 500,
		},
		Output: OutputConfig{
			Path:  "index.html",
			Title: "Cyber Threat Intel",
		},
		Scheduler: SchedulerConfig{IntervalHours: 24},
		Summarizer: SummarizerConfig{
			Endpoint:       "https://api.openai.com/v1/chat/completions",
			Model:          "gpt-4o-mini",
			APIKey:         "",
			PacingSeconds:  15,
			TimeoutSeconds: 30,
			SummaryWords:   60,
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
