package configuration

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"

	"fetcha/internal/logger"
)

type Config struct {
	ServerAddress          string
	DatabaseURI            string
	RedisURI               string
	ExtractorURL           string
	TelegramAPIURL         string
	TelegramBotToken       string
	FreeTierLimit          int
	ChangeThresholdPercent float64
	CheckInterval          time.Duration
	CheckInitialDelay      time.Duration
	CheckPace              time.Duration
	ExtractTimeout         time.Duration
	SessionTTL             time.Duration
	LogLevel               logger.Level
	LogToFile              bool
	AuthSecretKey          jwk.Key
}

type tomlConfig struct {
	ServerAddress          string  `toml:"server_address"`
	DatabaseURI            string  `toml:"database_uri"`
	RedisURI               string  `toml:"redis_uri"`
	ExtractorURL           string  `toml:"extractor_url"`
	TelegramAPIURL         string  `toml:"telegram_api_url"`
	TelegramBotToken       string  `toml:"telegram_bot_token"`
	FreeTierLimit          int     `toml:"free_tier_limit"`
	ChangeThresholdPercent float64 `toml:"change_threshold_percent"`
	CheckInterval          string  `toml:"check_interval"`
	CheckInitialDelay      string  `toml:"check_initial_delay"`
	CheckPace              string  `toml:"check_pace"`
	ExtractTimeout         string  `toml:"extract_timeout"`
	SessionTTL             string  `toml:"session_ttl"`
	LogLevel               string  `toml:"log_level"`
	LogToFile              bool    `toml:"log_to_file"`
	AuthSecretKey          string  `toml:"auth_secret_key"`
}

func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}

	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8888"
	}
	if tc.DatabaseURI == "" {
		tc.DatabaseURI = "mongodb://localhost:27017"
	}
	if tc.RedisURI == "" {
		tc.RedisURI = "redis://localhost:6379"
	}
	if tc.TelegramAPIURL == "" {
		tc.TelegramAPIURL = "https://api.telegram.org"
	}

	if tc.ExtractorURL == "" {
		return nil, errors.New("extractor_url is not set")
	}
	if tc.TelegramBotToken == "" {
		return nil, errors.New("telegram_bot_token is not set")
	}

	if tc.FreeTierLimit == 0 {
		tc.FreeTierLimit = 3
	}
	if tc.FreeTierLimit < 0 {
		return nil, errors.Errorf("free_tier_limit is negative: %d", tc.FreeTierLimit)
	}
	if tc.ChangeThresholdPercent == 0 {
		tc.ChangeThresholdPercent = 5
	}
	if tc.ChangeThresholdPercent < 0 {
		return nil, errors.Errorf("change_threshold_percent is negative: %f", tc.ChangeThresholdPercent)
	}

	checkInterval, err := durationOrDefault(tc.CheckInterval, "check_interval", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	if checkInterval < time.Minute {
		return nil, errors.Errorf("check_interval too short (%v), minimum interval: 1m", checkInterval)
	}
	checkInitialDelay, err := durationOrDefault(tc.CheckInitialDelay, "check_initial_delay", time.Minute)
	if err != nil {
		return nil, err
	}
	checkPace, err := durationOrDefault(tc.CheckPace, "check_pace", 5*time.Second)
	if err != nil {
		return nil, err
	}
	extractTimeout, err := durationOrDefault(tc.ExtractTimeout, "extract_timeout", 60*time.Second)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := durationOrDefault(tc.SessionTTL, "session_ttl", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	if tc.LogLevel == "" {
		tc.LogLevel = "INFO"
	}
	logLevel, err := logger.ParseLevel(tc.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse log_level")
	}

	if tc.AuthSecretKey == "" {
		return nil, errors.New("auth_secret_key is not set")
	}
	authSecretKey, err := jwk.FromRaw([]byte(tc.AuthSecretKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create key from auth_secret_key")
	}

	return &Config{
		ServerAddress:          tc.ServerAddress,
		DatabaseURI:            tc.DatabaseURI,
		RedisURI:               tc.RedisURI,
		ExtractorURL:           tc.ExtractorURL,
		TelegramAPIURL:         tc.TelegramAPIURL,
		TelegramBotToken:       tc.TelegramBotToken,
		FreeTierLimit:          tc.FreeTierLimit,
		ChangeThresholdPercent: tc.ChangeThresholdPercent,
		CheckInterval:          checkInterval,
		CheckInitialDelay:      checkInitialDelay,
		CheckPace:              checkPace,
		ExtractTimeout:         extractTimeout,
		SessionTTL:             sessionTTL,
		LogLevel:               logLevel,
		LogToFile:              tc.LogToFile,
		AuthSecretKey:          authSecretKey,
	}, nil
}

func durationOrDefault(s string, name string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse %s: %s", name, s)
	}
	if d <= 0 {
		return 0, errors.Errorf("%s is not positive: %s", name, s)
	}
	return d, nil
}
