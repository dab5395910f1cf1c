package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath   string `envconfig:"DB_PATH" default:"./data/hiomo.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Daily notification schedule.
	TZ           string `envconfig:"TZ" default:"Europe/Helsinki"`
	NotifyTime   string `envconfig:"NOTIFY_TIME" default:"10:30"` // HH:MM local
	WeekdaysOnly bool   `envconfig:"NOTIFY_WEEKDAYS_ONLY" default:"true"`

	// Menu feed.
	MenuBaseURL  string        `envconfig:"MENU_BASE_URL" default:"https://www.sodexo.fi/ruokalistat/output/daily_json"`
	RestaurantID string        `envconfig:"RESTAURANT_ID" default:"89"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`

	// Dispatch.
	DispatchWorkers int           `envconfig:"DISPATCH_WORKERS" default:"4"`
	SendTimeout     time.Duration `envconfig:"SEND_TIMEOUT" default:"10s"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
