package environments

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	SendGrid SendGridConfig
	Campaign CampaignConfig
	Schedule ScheduleConfig
	Health   HealthConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port string
}

type SendGridConfig struct {
	APIKey      string
	BaseURL     string
	SenderEmail string
	SenderName  string
	Timeout     time.Duration
	RetryCount  int
}

type CampaignConfig struct {
	TemplatePath      string
	SubjectPrefix     string
	DefaultName       string
	UTCOffsetHours    int
	Concurrency       int
	SendTimeout       time.Duration
	RunTimeout        time.Duration
	AcceptedStatus    int
	TestSubjectPrefix string
}

type ScheduleConfig struct {
	FilePath      string
	DefaultHour   int
	DefaultMinute int
}

type HealthConfig struct {
	AlertEmail    string
	StaleAfter    time.Duration
	CheckInterval time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	TriggerAPIKey string
}

type LogConfig struct {
	Level string
}

// Load reads the process configuration. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "8080"),
		},
		SendGrid: SendGridConfig{
			APIKey:      GetEnv("SENDGRID_API_KEY", ""),
			BaseURL:     GetEnv("SENDGRID_BASE_URL", "https://api.sendgrid.com"),
			SenderEmail: GetEnv("SENDER_EMAIL", ""),
			SenderName:  GetEnv("SENDER_NAME", "Forex_Bullion"),
			Timeout:     time.Duration(GetEnvAsInt("SENDGRID_TIMEOUT_SECONDS", 15)) * time.Second,
			RetryCount:  GetEnvAsInt("SENDGRID_RETRY_COUNT", 2),
		},
		Campaign: CampaignConfig{
			TemplatePath:      GetEnv("TEMPLATE_PATH", "template.html"),
			SubjectPrefix:     GetEnv("SUBJECT_PREFIX", "Daily Forex Signals"),
			DefaultName:       GetEnv("DEFAULT_RECIPIENT_NAME", "Trader"),
			UTCOffsetHours:    GetEnvAsInt("CAMPAIGN_UTC_OFFSET_HOURS", 4),
			Concurrency:       GetEnvAsInt("CAMPAIGN_CONCURRENCY", 5),
			SendTimeout:       GetEnvAsDuration("CAMPAIGN_SEND_TIMEOUT", 20*time.Second),
			RunTimeout:        GetEnvAsDuration("CAMPAIGN_RUN_TIMEOUT", 15*time.Minute),
			AcceptedStatus:    GetEnvAsInt("SENDGRID_ACCEPTED_STATUS", 202),
			TestSubjectPrefix: GetEnv("TEST_SUBJECT_PREFIX", "[TEST] Daily Forex Signals"),
		},
		Schedule: ScheduleConfig{
			FilePath:      GetEnv("SCHEDULE_FILE", "schedule_config.json"),
			DefaultHour:   GetEnvAsInt("SCHEDULE_DEFAULT_HOUR", 10),
			DefaultMinute: GetEnvAsInt("SCHEDULE_DEFAULT_MINUTE", 0),
		},
		Health: HealthConfig{
			AlertEmail:    GetEnv("ALERT_EMAIL", ""),
			StaleAfter:    GetEnvAsDuration("HEALTH_STALE_AFTER", 25*time.Hour),
			CheckInterval: GetEnvAsDuration("HEALTH_CHECK_INTERVAL", 30*time.Minute),
		},
		Database: DatabaseConfig{
			Enabled:  GetEnvAsBool("DELIVERY_LOG_ENABLED", false),
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "3306"),
			User:     GetEnv("DB_USER", "mailer"),
			Password: GetEnv("DB_PASSWORD", "mailer123"),
			DBName:   GetEnv("DB_NAME", "campaign_mailer"),
		},
		Redis: RedisConfig{
			Enabled:  GetEnvAsBool("REDIS_ENABLED", true),
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TriggerAPIKey: GetEnv("TRIGGER_API_KEY", ""),
		},
		Log: LogConfig{
			Level: GetEnv("LOG_LEVEL", "info"),
		},
	}
}

// Location returns the fixed reference zone used for rendering dates and
// for the daily trigger.
func (c CampaignConfig) Location() *time.Location {
	offset := c.UTCOffsetHours
	name := "UTC"
	if offset > 0 {
		name = "UTC+" + strconv.Itoa(offset)
	} else if offset < 0 {
		name = "UTC" + strconv.Itoa(offset)
	}
	return time.FixedZone(name, offset*3600)
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
