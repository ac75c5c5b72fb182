package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultEcountBaseURL = "https://sboapiia.ecount.com/OAPI/V2"

type Config struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
	LogLevel     string   `mapstructure:"log_level"`
	LogFile      string   `mapstructure:"log_file"`
	MaxBodyMB    int      `mapstructure:"max_body_mb"`

	CatalogFile      string `mapstructure:"catalog_file"`
	CatalogDelimiter string `mapstructure:"catalog_delimiter"`
	CatalogHeaderRow int    `mapstructure:"catalog_header_row"`

	MatchMinScore    float64 `mapstructure:"match_min_score"`
	MatchMinTokenLen int     `mapstructure:"match_min_token_len"`

	EcountBaseURL   string        `mapstructure:"ecount_base_url"`
	EcountSessionID string        `mapstructure:"ecount_session_id"`
	EcountTimeout   time.Duration `mapstructure:"ecount_timeout"`
	EcountRPS       float64       `mapstructure:"ecount_rps"`

	LineChannelSecret      string `mapstructure:"line_channel_secret"`
	LineChannelAccessToken string `mapstructure:"line_channel_access_token"`

	ChatRatePerSec float64 `mapstructure:"chat_rate_per_sec"`
	ChatRateBurst  int     `mapstructure:"chat_rate_burst"`
}

// Load reads .env (if present), then config.yaml from . or ./config, then the
// environment. Keys are the upper-case env names, e.g. PORT or ECOUNT_SESSION_ID.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.AllowOrigins = splitOrigins(cfg.AllowOrigins)

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8000)
	v.SetDefault("allow_origins", []string{"*"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/ecount-chatbot.log")
	v.SetDefault("max_body_mb", 1)

	v.SetDefault("catalog_file", "data/items_master.csv")
	v.SetDefault("catalog_delimiter", ",")
	v.SetDefault("catalog_header_row", 1)

	v.SetDefault("match_min_score", 70)
	v.SetDefault("match_min_token_len", 4)

	v.SetDefault("ecount_base_url", DefaultEcountBaseURL)
	v.SetDefault("ecount_session_id", "")
	v.SetDefault("ecount_timeout", "10s")
	v.SetDefault("ecount_rps", 0)

	v.SetDefault("line_channel_secret", "")
	v.SetDefault("line_channel_access_token", "")

	v.SetDefault("chat_rate_per_sec", 2)
	v.SetDefault("chat_rate_burst", 5)
}

func validate(c Config) error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be 1..65535, got %d", c.Port)
	}
	if c.MaxBodyMB < 1 {
		return fmt.Errorf("MAX_BODY_MB must be positive, got %d", c.MaxBodyMB)
	}
	if c.CatalogHeaderRow < 1 {
		return fmt.Errorf("CATALOG_HEADER_ROW must be >= 1, got %d", c.CatalogHeaderRow)
	}
	if _, err := parseDelimiter(c.CatalogDelimiter); err != nil {
		return err
	}
	if c.MatchMinScore < 0 || c.MatchMinScore > 100 {
		return fmt.Errorf("MATCH_MIN_SCORE must be 0..100, got %g", c.MatchMinScore)
	}
	if c.MatchMinTokenLen < 1 {
		return fmt.Errorf("MATCH_MIN_TOKEN_LEN must be >= 1, got %d", c.MatchMinTokenLen)
	}
	if c.EcountTimeout <= 0 {
		return fmt.Errorf("ECOUNT_TIMEOUT must be positive, got %s", c.EcountTimeout)
	}
	if c.EcountRPS < 0 || c.ChatRatePerSec < 0 || c.ChatRateBurst < 0 {
		return errors.New("rate limits must not be negative")
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (c Config) MaxBodyBytes() int64 { return int64(c.MaxBodyMB) << 20 }

// Delimiter is the catalog field separator; "\t" and "tab" mean a tab.
func (c Config) Delimiter() rune {
	r, _ := parseDelimiter(c.CatalogDelimiter)
	return r
}

// Warnings lists settings that leave part of the bot disabled.
func (c Config) Warnings() []string {
	var out []string
	if c.EcountSessionID == "" {
		out = append(out, "ECOUNT_SESSION_ID is empty: price and stock lookups will fail")
	}
	if c.LineChannelSecret == "" || c.LineChannelAccessToken == "" {
		out = append(out, "LINE_CHANNEL_SECRET or LINE_CHANNEL_ACCESS_TOKEN is empty: /line-webhook answers 500")
	}
	return out
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case `\t`, "tab", "\t":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("CATALOG_DELIMITER must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// splitOrigins accepts both a list and a single comma separated entry.
func splitOrigins(in []string) []string {
	var out []string
	for _, s := range in {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
