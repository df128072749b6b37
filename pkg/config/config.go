package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	PostgresConnStr string `mapstructure:"POSTGRES_CONN_STR"`
	MongoURI        string `mapstructure:"MONGO_URI"`
	MongoDatabase   string `mapstructure:"MONGO_DATABASE"`

	AuthProvider            string `mapstructure:"AUTH_PROVIDER"` // jwt | firebase
	JWTSecret               string `mapstructure:"JWT_SECRET"`
	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`

	LLMBaseURL string        `mapstructure:"LLM_BASE_URL"`
	LLMAPIKey  string        `mapstructure:"LLM_API_KEY"`
	LLMModel   string        `mapstructure:"LLM_MODEL"`
	LLMTimeout time.Duration `mapstructure:"LLM_TIMEOUT"`

	PlacesBaseURL string        `mapstructure:"PLACES_BASE_URL"`
	PlacesAPIKey  string        `mapstructure:"PLACES_API_KEY"`
	PlacesTimeout time.Duration `mapstructure:"PLACES_TIMEOUT"`

	TikTokOEmbedURL    string        `mapstructure:"TIKTOK_OEMBED_URL"`
	MetadataTimeout    time.Duration `mapstructure:"METADATA_TIMEOUT"`
	TikTokRetryBackoff time.Duration `mapstructure:"TIKTOK_RETRY_BACKOFF"`
	BrowserRenderer    bool          `mapstructure:"BROWSER_RENDERER"`

	PlaceCache    string        `mapstructure:"PLACE_CACHE"` // none | redis | badger
	PlaceCacheTTL time.Duration `mapstructure:"PLACE_CACHE_TTL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	BadgerPath    string        `mapstructure:"BADGER_PATH"`
}

var defaults = map[string]interface{}{
	"PORT":                      "8080",
	"ENV":                       "development",
	"LOG_LEVEL":                 "info",
	"POSTGRES_CONN_STR":         "",
	"MONGO_URI":                 "",
	"MONGO_DATABASE":            "spotdrop",
	"AUTH_PROVIDER":             "jwt",
	"JWT_SECRET":                "",
	"FIREBASE_CREDENTIALS_PATH": "./firebase_credentials.json",
	"LLM_BASE_URL":              "https://api.openai.com/v1",
	"LLM_API_KEY":               "",
	"LLM_MODEL":                 "gpt-4o-mini",
	"LLM_TIMEOUT":               "20s",
	"PLACES_BASE_URL":           "https://places.googleapis.com/v1",
	"PLACES_API_KEY":            "",
	"PLACES_TIMEOUT":            "10s",
	"TIKTOK_OEMBED_URL":         "https://www.tiktok.com/oembed",
	"METADATA_TIMEOUT":          "10s",
	"TIKTOK_RETRY_BACKOFF":      "500ms",
	"BROWSER_RENDERER":          false,
	"PLACE_CACHE":               "none",
	"PLACE_CACHE_TTL":           "168h",
	"REDIS_ADDR":                "localhost:6379",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"BADGER_PATH":               "./badger_data",
}

// Load reads .env, an optional config.yaml under path, then the environment.
// Environment variables win over the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.PostgresConnStr == "" {
		return fmt.Errorf("POSTGRES_CONN_STR is not set")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is not set")
	}
	switch c.AuthProvider {
	case "jwt":
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is not set")
		}
	case "firebase":
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}
	switch c.PlaceCache {
	case "none", "redis", "badger":
	default:
		return fmt.Errorf("unknown PLACE_CACHE %q", c.PlaceCache)
	}
	return nil
}

// IsDevelopment reports whether the service runs locally
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
