package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Server holds the funnel service settings loaded from a config file.
type Server struct {
	DBPath              string  `mapstructure:"db_path"`
	BasicAmount         int64   `mapstructure:"basic_amount"`
	PremiumAmount       int64   `mapstructure:"premium_amount"`
	PollIntervalSeconds int     `mapstructure:"poll_interval_seconds"`
	MaxPollSeconds      int     `mapstructure:"max_poll_seconds"`
	ProgressRate        float64 `mapstructure:"progress_rate"`
}

func (s *Server) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

func (s *Server) MaxPollDuration() time.Duration {
	return time.Duration(s.MaxPollSeconds) * time.Second
}

// LoadServer reads the server config file, filling defaults for anything
// the file leaves out.
func LoadServer(path string) (*Server, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("db_path", "report-funnel.db")
	v.SetDefault("basic_amount", 9900)
	v.SetDefault("premium_amount", 4900)
	v.SetDefault("poll_interval_seconds", 5)
	v.SetDefault("max_poll_seconds", 180)
	v.SetDefault("progress_rate", 1.5)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}
	return &cfg, nil
}
