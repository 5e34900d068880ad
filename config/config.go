// Package config loads server configuration from config.yml and the
// environment. Every threshold and I/O limit the engine depends on is
// overridable here, without code change.
package config

import (
	"strings"

	"github.com/gotify/configor"
	"github.com/shopspring/decimal"
)

type Configuration struct {
	App struct {
		ListenAddr string `default:"" env:"APP_HOST"`
		Port       int    `default:"8080" env:"APP_PORT"`
		LogLevel   string `default:"info" env:"APP_LOG_LEVEL"`
	}
	Database struct {
		Path string `default:"claims.db" env:"DB_PATH"`
	}
	Automation struct {
		// Auto-approval thresholds: claims at or under BOTH limits skip
		// manual review.
		AutoApproveMaxHours  string `default:"20" env:"AUTO_APPROVE_MAX_HOURS"`
		AutoApproveMaxAmount string `default:"1000" env:"AUTO_APPROVE_MAX_AMOUNT"`

		// Background sweep re-applying auto-approval to pending claims.
		SweepEnabled  *bool  `default:"true" env:"AUTO_VERIFY_SWEEP_ENABLED"`
		SweepInterval string `default:"1h" env:"AUTO_VERIFY_SWEEP_INTERVAL"`
	}
	Uploads struct {
		Dir          string `default:"data/uploads" env:"UPLOADS_DIR"`
		MaxFileBytes int64  `default:"5242880" env:"UPLOADS_MAX_FILE_BYTES"` // 5 MiB
		// Comma-separated extension allow-list.
		AllowedExtensions string `default:".pdf,.docx,.xlsx" env:"UPLOADS_ALLOWED_EXTENSIONS"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

// Load reads config.yml (if present) and the environment.
func Load() (*Configuration, error) {
	conf := new(Configuration)
	if err := configor.New(&configor.Config{}).Load(conf, configFiles()...); err != nil {
		return nil, err
	}
	return conf, nil
}

// MaxHours parses the auto-approval hours threshold.
func (c *Configuration) MaxHours() (decimal.Decimal, error) {
	return decimal.NewFromString(c.Automation.AutoApproveMaxHours)
}

// MaxAmount parses the auto-approval amount threshold.
func (c *Configuration) MaxAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(c.Automation.AutoApproveMaxAmount)
}

// Extensions splits the allow-list into individual extensions.
func (c *Configuration) Extensions() []string {
	parts := strings.Split(c.Uploads.AllowedExtensions, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
