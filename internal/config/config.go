package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

// Config holds all configuration from environment variables.
type Config struct {
	Token    string   `envconfig:"TELEGRAM_API_TOKEN" required:"true"`
	Triggers []string `envconfig:"TRIGGERS" default:"ai,ask,gpt,openai,@ai"`

	// Answer service settings
	AnswerBackend string        `envconfig:"ANSWER_BACKEND" default:"gts"`
	AnswerBaseURL string        `envconfig:"ANSWER_BASE_URL" default:"https://king-aryanapis.onrender.com"`
	AnswerTimeout time.Duration `envconfig:"ANSWER_TIMEOUT" default:"0"`

	// LLM backend settings, used when AnswerBackend is "llm"
	APIKey       string `envconfig:"OPENROUTER_API_KEY"`
	BaseURL      string `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	Model        string `envconfig:"OPENROUTER_MODEL" default:"anthropic/claude-3.5-sonnet"`
	HistoryLimit int    `envconfig:"HISTORY_LIMIT" default:"10"`

	// Empty keeps users and threads in memory.
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`

	Timezone             string  `envconfig:"TIMEZONE" default:"Asia/Manila"`
	ScheduleEnabled      bool    `envconfig:"SCHEDULE_ENABLED" default:"true"`
	BroadcastRate        float64 `envconfig:"BROADCAST_RATE" default:"25"` // Messages per second
	BroadcastConcurrency int     `envconfig:"BROADCAST_CONCURRENCY" default:"4"`

	ReplyRegistrySize int    `envconfig:"REPLY_REGISTRY_SIZE" default:"10000"`
	MetricsAddr       string `envconfig:"METRICS_ADDR" default:""`

	// Path to config.toml file
	ConfigFile string `envconfig:"CONFIG_FILE" default:"config.toml"`

	// Loaded from config.toml
	Messages  Messages
	Reactions Reactions
	Signature string
	Schedule  []ScheduleEntry

	// Resolved from Timezone
	Location *time.Location
}

// Messages holds the user-facing texts loaded from config.toml.
type Messages struct {
	Usage          string `toml:"usage"`
	Unauthorized   string `toml:"unauthorized"`
	ResetDone      string `toml:"reset_done"`
	FallbackName   string `toml:"fallback_name"`
	AskAction      string `toml:"ask_action"`
	FollowUpAction string `toml:"follow_up_action"`
	ResetAction    string `toml:"reset_action"`
}

// Reactions holds the emoji set on the triggering message.
type Reactions struct {
	Pending string `toml:"pending"`
	Success string `toml:"success"`
	Failure string `toml:"failure"`
}

// ScheduleEntry is one "hh:mm:ss AM" line of the broadcast table.
type ScheduleEntry struct {
	Time    string `toml:"time"`
	Message string `toml:"message"`
}

// FileConfig represents the structure of config.toml.
type FileConfig struct {
	Messages  Messages        `toml:"messages"`
	Reactions Reactions       `toml:"reactions"`
	Signature string          `toml:"signature"`
	Schedule  []ScheduleEntry `toml:"schedule"`
}

// DefaultMessages provides fallback texts if config.toml is not found.
var DefaultMessages = Messages{
	Usage:          "❗ It looks like you didn't provide a question. Please include a question after the command so I can assist you.",
	Unauthorized:   "⚠️ You are not authorized to reply to this message.",
	ResetDone:      "✅ The conversation history has been successfully cleared.",
	FallbackName:   "a user",
	AskAction:      "processing your request",
	FollowUpAction: "processing your reply",
	ResetAction:    "clearing the conversation history",
}

// DefaultReactions only uses emoji Telegram accepts as message reactions.
var DefaultReactions = Reactions{
	Pending: "👀",
	Success: "👍",
	Failure: "👎",
}

const DefaultSignature = "Mica🎀"

// DefaultSchedule is the broadcast table used when config.toml has no [[schedule]] entries.
var DefaultSchedule = []ScheduleEntry{
	{Time: "01:00:00 AM", Message: "good morning everyone!!, have a nice morning🍞☕🌅"},
	{Time: "02:00:00 AM", Message: "don't forget to add/follow my owner☺."},
	{Time: "03:00:00 AM", Message: "you're all up early huh"},
	{Time: "04:00:00 AM", Message: "eyyy🤙, anyone with class today awake yet?"},
	{Time: "05:00:00 AM", Message: "eat up guys so we can head to school🏫"},
	{Time: "06:00:00 AM", Message: "let's go to school🏫"},
	{Time: "07:00:00 AM", Message: "first period is starting🥹"},
	{Time: "08:00:00 AM", Message: "1 hour and 15 minutes until recess🤩🤩"},
	{Time: "09:00:00 AM", Message: "if you haven't eaten yet, eat now💀🙏"},
	{Time: "10:00:00 AM", Message: "don't forget to chat my owner💀🙏"},
	{Time: "11:00:00 AM", Message: "30 mins left until lunch break😊"},
	{Time: "12:00:00 PM", Message: "add my owner already, maybe your true love is there, hey😆🥰"},
	{Time: "01:00:00 PM", Message: "don't forget to eat y'all lunch break😸"},
	{Time: "02:00:00 PM", Message: "good afternoon!!, my owner is so handsome asf😎"},
	{Time: "03:00:00 PM", Message: "┃ my owner is so handsome 😎"},
	{Time: "04:00:00 PM", Message: "good afternoon folks😸"},
	{Time: "05:00:00 PM", Message: "check first if you have any assignments"},
	{Time: "06:00:00 PM", Message: "don't forget to eat y'all dinner💀🙏"},
	{Time: "07:00:00 PM", Message: "what's the point of being online if you won't chat my owner😎"},
	{Time: "08:00:00 PM", Message: "have you all eaten yet?"},
	{Time: "09:00:00 PM", Message: "time to sleep, you fools😸"},
	{Time: "10:00:00 PM", Message: "it's late and you're all still up💀🙏"},
	{Time: "11:00:00 PM", Message: "my owner won't get any less handsome."},
}

// LoadEnv loads the configuration from environment variables.
func (c Config) LoadEnv() (Config, error) {
	cfg := c

	if err := envconfig.Process("", &cfg); err != nil {
		return c, err
	}

	return cfg, nil
}

// LoadFile loads messages, reactions and the schedule table from config.toml.
func (c *Config) LoadFile() error {
	// Try to find config file
	configPath := c.ConfigFile
	if !filepath.IsAbs(configPath) {
		// Try current directory first
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			// Try executable directory
			execPath, err := os.Executable()
			if err == nil {
				execDir := filepath.Dir(execPath)
				configPath = filepath.Join(execDir, c.ConfigFile)
			}
		}
	}

	var fileConfig FileConfig

	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, &fileConfig); err != nil {
			return fmt.Errorf("failed to decode %s: %w", configPath, err)
		}
	}

	c.Messages = withDefaultMessages(fileConfig.Messages)
	c.Reactions = withDefaultReactions(fileConfig.Reactions)

	c.Signature = fileConfig.Signature
	if c.Signature == "" {
		c.Signature = DefaultSignature
	}

	c.Schedule = fileConfig.Schedule
	if len(c.Schedule) == 0 {
		c.Schedule = DefaultSchedule
	}

	return nil
}

// LoadLocation resolves the configured timezone.
func (c *Config) LoadLocation() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

func withDefaultMessages(m Messages) Messages {
	if m.Usage == "" {
		m.Usage = DefaultMessages.Usage
	}
	if m.Unauthorized == "" {
		m.Unauthorized = DefaultMessages.Unauthorized
	}
	if m.ResetDone == "" {
		m.ResetDone = DefaultMessages.ResetDone
	}
	if m.FallbackName == "" {
		m.FallbackName = DefaultMessages.FallbackName
	}
	if m.AskAction == "" {
		m.AskAction = DefaultMessages.AskAction
	}
	if m.FollowUpAction == "" {
		m.FollowUpAction = DefaultMessages.FollowUpAction
	}
	if m.ResetAction == "" {
		m.ResetAction = DefaultMessages.ResetAction
	}
	return m
}

func withDefaultReactions(r Reactions) Reactions {
	if r.Pending == "" {
		r.Pending = DefaultReactions.Pending
	}
	if r.Success == "" {
		r.Success = DefaultReactions.Success
	}
	if r.Failure == "" {
		r.Failure = DefaultReactions.Failure
	}
	return r
}

func NewConfig() (*Config, error) {
	var cfg Config
	loadedCfg, err := cfg.LoadEnv()
	if err != nil {
		return nil, err
	}

	if err := loadedCfg.LoadFile(); err != nil {
		return nil, err
	}

	if err := loadedCfg.LoadLocation(); err != nil {
		return nil, err
	}

	return &loadedCfg, nil
}

func Module() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(
			NewConfig,
		),
	)
}
