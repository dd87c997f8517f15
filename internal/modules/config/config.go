package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pivot_bot/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDirENV      = "CONFIG_DIR"
	tokenTelegramENV  = "TELEGRAM_BOT_TOKEN"
	chatTelegramENV   = "TELEGRAM_CHAT_ID"
	apiURLENV         = "EXTERNAL_API_URL"
	apiKeyENV         = "EXTERNAL_API_KEY"
	databaseDSN       = "DATABASE_DSN"
	portENV           = "PORT"
	envENV            = "APP_ENV"
)

// Config ...
type Config struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	Service struct {
		Host       string `yaml:"host"`
		PublicPort int    `yaml:"public_port"`
		AdminPort  int    `yaml:"admin_port"`
	} `yaml:"service"`

	MarketData MarketData     `yaml:"market_data"`
	Backtest   Backtest       `yaml:"backtest"`
	Instrument Instruments    `yaml:"instruments"`
	Tracing    tracing.Config `yaml:"tracing"`

	// Праздники NSE в формате YYYY-MM-DD - пропускаются при поиске предыдущего торгового дня.
	Holidays []string `yaml:"holidays"`
}

// MarketData - провайдер исторических свечей.
type MarketData struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	UserAgent      string        `yaml:"user_agent"`
	Timeout        time.Duration `yaml:"timeout"`
	Timeframe      string        `yaml:"timeframe"`       // "minutes"
	Interval       int           `yaml:"interval"`        // 5
	DailyTimeframe string        `yaml:"daily_timeframe"` // "days"
	Timezone       string        `yaml:"timezone"`
}

type Backtest struct {
	BatchSize   int           `yaml:"batch_size"`
	BatchPause  time.Duration `yaml:"batch_pause"`
	DetectFrom  string        `yaml:"detect_from"`
	DetectTo    string        `yaml:"detect_to"`
	Cutoff      string        `yaml:"cutoff"`
	StopBuffer  float64       `yaml:"stop_buffer"` // 0.001 => стоп на 0.1% за уровнем
	MaxStop     float64       `yaml:"max_stop"`    // 0.005 => не дальше 0.5% от входа
	RewardRisk  float64       `yaml:"reward_risk"`
	Universe    []string      `yaml:"universe"` // instrument keys; пусто => весь справочник
	NotifyJSON  bool          `yaml:"notify_json"`
	NotifyEmpty bool          `yaml:"notify_empty"`
}

type Instruments struct {
	File    string `yaml:"file"`
	Segment string `yaml:"segment"`
}

func defaults() Config {
	c := Config{
		Env:      "development",
		LogLevel: "info",
		MarketData: MarketData{
			UserAgent:      "intraday-bot/1.0.0",
			Timeout:        30 * time.Second,
			Timeframe:      "minutes",
			Interval:       5,
			DailyTimeframe: "days",
			Timezone:       "Asia/Kolkata",
		},
		Backtest: Backtest{
			BatchSize:  5,
			BatchPause: time.Second,
			DetectFrom: "9:20 AM",
			DetectTo:   "11:20 AM",
			Cutoff:     "3:00 PM",
			StopBuffer: 0.001,
			MaxStop:    0.005,
			RewardRisk: 2,
		},
		Instrument: Instruments{
			File:    "configs/NSE_EQ.json",
			Segment: "NSE_EQ",
		},
	}
	c.Service.PublicPort = 3000
	c.Service.AdminPort = 8080
	return c
}

// NewConfig читает configs/$CONFIG_FILE (по умолчанию values_local.yaml) и применяет env.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	dir := getenvDefault(configDirENV, "configs")

	return Load(filepath.Join(dir, configFileName))
}

// Load - конфиг из конкретного файла + env overrides + валидация.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}

	defer func() {
		_ = file.Close()
	}()

	config := defaults()
	if err = yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, errors.Wrap(err, "failed to decode config file")
	}

	applyEnv(&config)

	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyEnv(config *Config) {
	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if v := os.Getenv(chatTelegramENV); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}
	if v := os.Getenv(apiURLENV); v != "" {
		config.MarketData.BaseURL = v
	}
	if v := os.Getenv(apiKeyENV); v != "" {
		config.MarketData.APIKey = v
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		config.DB = dsn
	}
	config.Service.PublicPort = intFromEnv(portENV, config.Service.PublicPort)
	config.Env = getenvDefault(envENV, config.Env)
	config.LogLevel = getenvDefault("LOG_LEVEL", config.LogLevel)
	config.Backtest.BatchSize = intFromEnv("BATCH_SIZE", config.Backtest.BatchSize)
	config.Backtest.BatchPause = durationFromEnv("BATCH_PAUSE", config.Backtest.BatchPause.String())
}

func (c *Config) Production() bool { return strings.EqualFold(c.Env, "production") }

// Validate: в production обязательны telegram и адрес провайдера,
// в остальных окружениях отсутствие URL всплывёт как ErrConfiguration при прогоне.
func (c *Config) Validate() error {
	if c.Backtest.BatchSize <= 0 {
		return fmt.Errorf("backtest.batch_size must be > 0, got %d", c.Backtest.BatchSize)
	}
	if c.Backtest.RewardRisk <= 0 {
		return fmt.Errorf("backtest.reward_risk must be > 0")
	}
	if !c.Production() {
		return nil
	}

	var missing []string
	if c.Telegram.Token == "" {
		missing = append(missing, tokenTelegramENV)
	}
	if c.Telegram.ChatID == 0 {
		missing = append(missing, chatTelegramENV)
	}
	if c.MarketData.BaseURL == "" {
		missing = append(missing, apiURLENV)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
