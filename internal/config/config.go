package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"workshop-payroll-bot/internal/payroll"
)

type AppConfig struct {
	TelegramToken string
	BotDebug      bool

	DatabaseURL string
	HTTPAddr    string
	// BackendURL, when set, makes the bot talk to a remote API instead of
	// the in-process services.
	BackendURL     string
	AllowedOrigins []string

	ExportDir string
	LogLevel  logrus.Level

	Schedule payroll.Schedule
}

var (
	instance *AppConfig
	once     sync.Once
)

// GetAppConfig loads the configuration once and exits on error.
func GetAppConfig() *AppConfig {
	once.Do(func() {
		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("error loading configuration: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load reads .env, if present, and the environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("error loading .env file: %s", err.Error())
	}

	cfg := &AppConfig{
		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		BotDebug:       getEnvAsBool("BOT_DEBUG", false),
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", "payroll.db"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		BackendURL:     getEnv("BACKEND_URL", ""),
		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		ExportDir:      getEnv("EXPORT_DIR", "exports"),
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	days, err := getEnvAsFloat("PAYROLL_DAYS_PER_WEEK", payroll.DefaultDaysPerWeek)
	if err != nil {
		return nil, err
	}
	hours, err := getEnvAsFloat("PAYROLL_HOURS_PER_DAY", payroll.DefaultHoursPerDay)
	if err != nil {
		return nil, err
	}
	schedule, err := payroll.NewSchedule(days, hours)
	if err != nil {
		return nil, err
	}
	cfg.Schedule = schedule

	return cfg, nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

// getEnvOrDefault treats an empty value like a missing one.
func getEnvOrDefault(key string, defaultVal string) string {
	if value := getEnv(key, ""); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

// getEnvAsFloat falls back only when the variable is unset or empty; a value
// that does not parse is an error.
func getEnvAsFloat(name string, defaultVal float64) (float64, error) {
	valStr := strings.TrimSpace(getEnv(name, ""))
	if valStr == "" {
		return defaultVal, nil
	}

	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, valStr, err)
	}
	return val, nil
}

func getEnvAsList(name string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(name, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
