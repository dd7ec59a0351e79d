package config

import "time"

// Config is the full flowdash configuration.
type Config struct {
	Log       LogConfig       `koanf:"log" json:"log"`
	Dashboard DashboardConfig `koanf:"dashboard" json:"dashboard"`
	API       APIConfig       `koanf:"api" json:"api"`
	Poll      PollConfig      `koanf:"poll" json:"poll"`
	Backend   BackendConfig   `koanf:"backend" json:"backend"`
	N8N       N8NConfig       `koanf:"n8n" json:"n8n"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level   string `koanf:"level" json:"level"`
	NoColor bool   `koanf:"no_color" json:"no_color"`
}

// DashboardConfig configures the HTML dashboard server.
type DashboardConfig struct {
	Addr       string  `koanf:"addr" json:"addr"`
	BasePath   string  `koanf:"base_path" json:"base_path"`
	Title      string  `koanf:"title" json:"title"`
	Locale     string  `koanf:"locale" json:"locale"`
	HourlyRate float64 `koanf:"hourly_rate" json:"hourly_rate"`
	ChartDays  int     `koanf:"chart_days" json:"chart_days"`
	ChartTheme string  `koanf:"chart_theme" json:"chart_theme"`
	AssetsHost string  `koanf:"assets_host" json:"assets_host"`
	Offline    bool    `koanf:"offline" json:"offline"`
}

// APIConfig points the dashboard at the automation REST API.
type APIConfig struct {
	BaseURL string        `koanf:"base_url" json:"base_url"`
	APIKey  string        `koanf:"api_key" json:"-"`
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
}

// PollConfig sets the refresh interval and page size of every resource.
type PollConfig struct {
	Workflows      time.Duration `koanf:"workflows" json:"workflows"`
	Stats          time.Duration `koanf:"stats" json:"stats"`
	Executions     time.Duration `koanf:"executions" json:"executions"`
	Recent         time.Duration `koanf:"recent" json:"recent"`
	ExecutionLimit int           `koanf:"execution_limit" json:"execution_limit"`
	RecentLimit    int           `koanf:"recent_limit" json:"recent_limit"`
}

// BackendConfig configures the REST backend served by `flowdash api`.
type BackendConfig struct {
	Addr            string   `koanf:"addr" json:"addr"`
	Database        string   `koanf:"database" json:"database"`
	FrontendOrigins []string `koanf:"frontend_origins" json:"frontend_origins"`
	SyncSchedule    string   `koanf:"sync_schedule" json:"sync_schedule"`
	Seed            bool     `koanf:"seed" json:"seed"`
}

// N8NConfig configures the n8n bridge used by the backend.
type N8NConfig struct {
	BaseURL string        `koanf:"base_url" json:"base_url"`
	APIKey  string        `koanf:"api_key" json:"-"`
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
}

// Defaults mirror the local development setup: dashboard on :3000, API on :8000.
func Defaults() map[string]any {
	return map[string]any{
		"log.level":    "info",
		"log.no_color": false,

		"dashboard.addr":        ":3000",
		"dashboard.base_path":   "/",
		"dashboard.title":       "Automation Dashboard",
		"dashboard.locale":      "en",
		"dashboard.hourly_rate": 25.0,
		"dashboard.chart_days":  7,
		"dashboard.chart_theme": "westeros",
		"dashboard.assets_host": "",
		"dashboard.offline":     false,

		"api.base_url": "http://localhost:8000",
		"api.api_key":  "",
		"api.timeout":  "10s",

		"poll.workflows":       "10s",
		"poll.stats":           "5s",
		"poll.executions":      "3s",
		"poll.recent":          "2s",
		"poll.execution_limit": 50,
		"poll.recent_limit":    10,

		"backend.addr":             ":8000",
		"backend.database":         "flowdash.db",
		"backend.frontend_origins": []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		"backend.sync_schedule":    "@every 15m",
		"backend.seed":             true,

		"n8n.base_url": "http://localhost:5678/api/v1",
		"n8n.api_key":  "",
		"n8n.timeout":  "10s",
	}
}
