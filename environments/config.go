package environments

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server      ServerConfig
	BotDatabase DatabaseConfig
	AppDatabase DatabaseConfig
	Redis       RedisConfig
	Twilio      TwilioConfig
	TaskSource  TaskSourceConfig
	Relay       RelayConfig
	Scheduler   SchedulerConfig
	Alert       AlertConfig
	Auth        AuthConfig

	// SendDelay is the pause between consecutive template sends in a batch
	// or broadcast, a deliberate throttle for the provider's rate limits.
	SendDelay time.Duration

	// Assignees is the ordered "name:number" directory raw value; parsed by
	// internal/directory at startup.
	Assignees string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type TwilioConfig struct {
	AccountSID      string
	AuthToken       string
	WhatsAppFrom    string
	TaskTemplateSID string
	Timeout         time.Duration
}

type TaskSourceConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RelayConfig struct {
	BaseURL             string
	APIKey              string
	DefaultPauseMinutes int
	Timeout             time.Duration
}

type SchedulerConfig struct {
	Interval  time.Duration
	AutoStart bool
}

type AlertConfig struct {
	WebhookURL     string
	IterationCount int
}

type AuthConfig struct {
	MessagesAPIKey  string
	SchedulerAPIKey string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "8080"),
		},
		BotDatabase: DatabaseConfig{
			Host:     GetEnv("BOT_DB_HOST", "localhost"),
			Port:     GetEnv("BOT_DB_PORT", "3306"),
			User:     GetEnv("BOT_DB_USER", "chatsuite"),
			Password: GetEnv("BOT_DB_PASSWORD", ""),
			DBName:   GetEnv("BOT_DB_NAME", "bot"),
		},
		AppDatabase: DatabaseConfig{
			Host:     GetEnv("APP_DB_HOST", "localhost"),
			Port:     GetEnv("APP_DB_PORT", "3306"),
			User:     GetEnv("APP_DB_USER", "chatsuite"),
			Password: GetEnv("APP_DB_PASSWORD", ""),
			DBName:   GetEnv("APP_DB_NAME", "chatsuite"),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		Twilio: TwilioConfig{
			AccountSID:      GetEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:       GetEnv("TWILIO_AUTH_TOKEN", ""),
			WhatsAppFrom:    GetEnv("TWILIO_WHATSAPP_FROM", ""),
			TaskTemplateSID: GetEnv("TWILIO_TASK_TEMPLATE_SID", ""),
			Timeout:         GetEnvAsDuration("TWILIO_TIMEOUT", 20*time.Second),
		},
		TaskSource: TaskSourceConfig{
			BaseURL: GetEnv("DTOS_API_URL", ""),
			Timeout: GetEnvAsDuration("DTOS_API_TIMEOUT", 30*time.Second),
		},
		Relay: RelayConfig{
			BaseURL:             GetEnv("RELAY_BASE_URL", ""),
			APIKey:              GetEnv("RELAY_API_KEY", ""),
			DefaultPauseMinutes: GetEnvAsInt("RELAY_DEFAULT_PAUSE_MINUTES", 30),
			Timeout:             GetEnvAsDuration("RELAY_TIMEOUT", 20*time.Second),
		},
		Scheduler: SchedulerConfig{
			Interval:  GetEnvAsDuration("SCHEDULER_INTERVAL", 15*time.Minute),
			AutoStart: GetEnvAsBool("SCHEDULER_AUTO_START", false),
		},
		Alert: AlertConfig{
			WebhookURL:     GetEnv("ALERT_WEBHOOK_URL", ""),
			IterationCount: GetEnvAsInt("ALERT_ITERATION_COUNT", 0),
		},
		Auth: AuthConfig{
			MessagesAPIKey:  GetEnv("MESSAGES_API_KEY", ""),
			SchedulerAPIKey: GetEnv("SCHEDULER_API_KEY", ""),
		},
		SendDelay: GetEnvAsDuration("NOTIFICATION_SEND_DELAY", 300*time.Millisecond),
		Assignees: GetEnv("ASSIGNEE_DIRECTORY", ""),
	}
}

// Validate checks every required field and reports all missing ones at once,
// so a misconfigured deployment fails with the full list instead of one
// variable per restart.
func (c *Config) Validate() error {
	var missing []string

	required := []struct {
		name  string
		value string
	}{
		{"TWILIO_ACCOUNT_SID", c.Twilio.AccountSID},
		{"TWILIO_AUTH_TOKEN", c.Twilio.AuthToken},
		{"TWILIO_WHATSAPP_FROM", c.Twilio.WhatsAppFrom},
		{"TWILIO_TASK_TEMPLATE_SID", c.Twilio.TaskTemplateSID},
		{"DTOS_API_URL", c.TaskSource.BaseURL},
		{"RELAY_BASE_URL", c.Relay.BaseURL},
		{"RELAY_API_KEY", c.Relay.APIKey},
		{"ASSIGNEE_DIRECTORY", c.Assignees},
		{"MESSAGES_API_KEY", c.Auth.MessagesAPIKey},
		{"SCHEDULER_API_KEY", c.Auth.SchedulerAPIKey},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
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
