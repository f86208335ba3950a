package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/graf262-max/legal-update-monitor/internal/laws"
)

const (
	defaultTimezone = "Asia/Seoul"
	configPathEnv   = "LEGALBRIEF_CONFIG"

	lawGoKeyEnv      = "LAW_GO_KR_OC"
	assemblyKeyEnv   = "ASSEMBLY_API_KEY"
	sendgridKeyEnv   = "SENDGRID_API_KEY"
	emailFromEnv     = "EMAIL_FROM"
	emailToEnv       = "EMAIL_RECIPIENTS"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
	dbPathEnv        = "LEGALBRIEF_DB"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	HTTP       HTTPConfig       `yaml:"http"`
	Server     ServerConfig     `yaml:"server"`
	Collectors CollectorsConfig `yaml:"collectors"`
	Storage    StorageConfig    `yaml:"storage"`
	Email      EmailConfig      `yaml:"email"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Laws       []laws.TargetLaw `yaml:"laws"`
}

// LoggingConfig selects slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines when briefing runs execute.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.UTC
}

// HTTPConfig is applied to every outbound client at construction. Some
// government hosts present certificates that fail standard validation, hence
// the explicit skip-verify option.
type HTTPConfig struct {
	TimeoutSeconds     int  `yaml:"timeoutSeconds"`
	InsecureSkipVerify bool `yaml:"insecureSkipVerify"`
}

// Timeout converts the configured seconds into a duration.
func (h HTTPConfig) Timeout() time.Duration {
	if h.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// ServerConfig configures the manual-trigger HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// CollectorsConfig enables/disables individual sources and bounds recency.
type CollectorsConfig struct {
	WindowHours       int            `yaml:"windowHours"`
	RunTimeoutSeconds int            `yaml:"runTimeoutSeconds"`
	LawGoKr           LawGoConfig    `yaml:"lawGoKr"`
	Assembly          AssemblyConfig `yaml:"assembly"`
	Moel              ToggleConfig   `yaml:"moel"`
	Pipc              ToggleConfig   `yaml:"pipc"`
	Msit              ToggleConfig   `yaml:"msit"`
	Fsc               ToggleConfig   `yaml:"fsc"`
	Ftc               ToggleConfig   `yaml:"ftc"`
}

// Window is the recency bound applied by the RSS and board collectors.
func (c CollectorsConfig) Window() time.Duration {
	if c.WindowHours <= 0 {
		return 48 * time.Hour
	}
	return time.Duration(c.WindowHours) * time.Hour
}

// RunTimeout bounds one whole aggregation run.
func (c CollectorsConfig) RunTimeout() time.Duration {
	if c.RunTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.RunTimeoutSeconds) * time.Second
}

// ToggleConfig is the enablement switch for keyless collectors.
type ToggleConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LawGoConfig configures the statute-registry collector. The API key comes
// from the environment only, never from the file.
type LawGoConfig struct {
	Enabled      bool   `yaml:"enabled"`
	WindowMonths int    `yaml:"windowMonths"`
	APIKey       string `yaml:"-"`
}

// AssemblyConfig configures the legislature collector. Age is the assembly
// session queried for bills.
type AssemblyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Age     int    `yaml:"age"`
	APIKey  string `yaml:"-"`
}

// StorageConfig points at the sqlite briefing log; empty disables it.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// EmailConfig wires SendGrid delivery; key comes from the environment.
type EmailConfig struct {
	From       string   `yaml:"from"`
	Recipients []string `yaml:"recipients"`
	APIKey     string   `yaml:"-"`
}

// TelegramConfig wires the optional chat channel.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. Fields absent from the file keep their defaults, so a partial
// config is always valid.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Laws) == 0 {
		cfg.Laws = laws.DefaultTargetLaws()
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(lawGoKeyEnv); v != "" {
		c.Collectors.LawGoKr.APIKey = v
	}
	if v := os.Getenv(assemblyKeyEnv); v != "" {
		c.Collectors.Assembly.APIKey = v
	}
	if v := os.Getenv(sendgridKeyEnv); v != "" {
		c.Email.APIKey = v
	}
	if v := os.Getenv(emailFromEnv); v != "" {
		c.Email.From = v
	}
	if v := os.Getenv(emailToEnv); v != "" {
		var recipients []string
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				recipients = append(recipients, r)
			}
		}
		c.Email.Recipients = recipients
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv(dbPathEnv); v != "" {
		c.Storage.Path = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	loc, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{
			// 00:00 UTC is 09:00 KST, the original briefing hour
			CronExpression: "0 9 * * *",
			Timezone:       defaultTimezone,
			location:       loc,
		},
		HTTP:   HTTPConfig{TimeoutSeconds: 20, InsecureSkipVerify: true},
		Server: ServerConfig{Addr: ":8080"},
		Collectors: CollectorsConfig{
			WindowHours:       48,
			RunTimeoutSeconds: 60,
			LawGoKr:           LawGoConfig{Enabled: true, WindowMonths: 6},
			Assembly:          AssemblyConfig{Enabled: true, Age: 22},
			Moel:              ToggleConfig{Enabled: true},
			Pipc:              ToggleConfig{Enabled: true},
			Msit:              ToggleConfig{Enabled: true},
			Fsc:               ToggleConfig{Enabled: true},
			Ftc:               ToggleConfig{Enabled: true},
		},
		Storage:  StorageConfig{Path: ""},
		Email:    EmailConfig{From: "noreply@example.com"},
		Telegram: TelegramConfig{},
		Laws:     laws.DefaultTargetLaws(),
	}
}
