package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	Timezone          string `mapstructure:"TIMEZONE"`

	// Upper bound for any single LLM or calendar call.
	ExternalCallTimeoutSeconds int `mapstructure:"EXTERNAL_CALL_TIMEOUT_SECONDS"`

	// Session storage.
	SessionBackend    string `mapstructure:"SESSION_BACKEND"`
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`
	SessionCapacity   int    `mapstructure:"SESSION_CAPACITY"`
	SessionSweepSpec  string `mapstructure:"SESSION_SWEEP_SPEC"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`

	// Calendar collaborator.
	CalendarBackend               string `mapstructure:"CALENDAR_BACKEND"`
	GoogleCalendarCredentialsPath string `mapstructure:"GOOGLE_CALENDAR_CREDENTIALS_PATH"`
	GoogleCalendarID              string `mapstructure:"GOOGLE_CALENDAR_ID"`
	BusinessHoursStart            int    `mapstructure:"BUSINESS_HOURS_START"`
	BusinessHoursEnd              int    `mapstructure:"BUSINESS_HOURS_END"`
	WeekdaysOnly                  bool   `mapstructure:"WEEKDAYS_ONLY"`

	// LLM collaborator.
	LLMBackend    string `mapstructure:"LLM_BACKEND"`
	LLMProvider   string `mapstructure:"LLM_PROVIDER"`
	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel   string `mapstructure:"OPENAI_MODEL"`
	GeminiAPIKey  string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel   string `mapstructure:"GEMINI_MODEL"`

	// Speech-to-text for voice messages.
	GoogleSpeechCredentialsPath string `mapstructure:"GOOGLE_SPEECH_CREDENTIALS_PATH"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("TIMEZONE", "UTC")
	viper.SetDefault("EXTERNAL_CALL_TIMEOUT_SECONDS", 10)
	viper.SetDefault("SESSION_BACKEND", "memory")
	viper.SetDefault("SESSION_TTL_MINUTES", 24*60)
	viper.SetDefault("SESSION_CAPACITY", 10000)
	viper.SetDefault("SESSION_SWEEP_SPEC", "@every 5m")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("CALENDAR_BACKEND", "google")
	viper.SetDefault("GOOGLE_CALENDAR_CREDENTIALS_PATH", "credentials/service-account-key.json")
	viper.SetDefault("GOOGLE_CALENDAR_ID", "primary")
	viper.SetDefault("BUSINESS_HOURS_START", 9)
	viper.SetDefault("BUSINESS_HOURS_END", 17)
	viper.SetDefault("WEEKDAYS_ONLY", true)
	viper.SetDefault("LLM_BACKEND", "none")
	viper.SetDefault("LLM_PROVIDER", "openai")
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_BASE_URL", "")
	viper.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("GOOGLE_SPEECH_CREDENTIALS_PATH", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location resolves TIMEZONE, falling back to UTC when it is unknown.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

// ExternalCallTimeout is the per-call budget for LLM and calendar requests.
func (c Config) ExternalCallTimeout() time.Duration {
	if c.ExternalCallTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ExternalCallTimeoutSeconds) * time.Second
}

// SessionTTL is the idle lifetime of a conversation.
func (c Config) SessionTTL() time.Duration {
	if c.SessionTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
