// Package config loads application configuration from flags, environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration values.
type Config struct {
	// HTTP
	ListenAddr string

	// Paths
	ProfilePath     string
	CalibrationPath string

	// Polling
	PollInterval time.Duration
}

// Load parses flags and merges them with AXISPIPE_* environment variables
// and an optional axispipe.yaml in the working directory.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("axispipe", pflag.ContinueOnError)
	flags.String("listen", ":8080", "HTTP listen address")
	flags.String("profile", "profile.xml", "Profile document path")
	flags.String("calibration", "calibration.xml", "Calibration file path")
	flags.Duration("poll-interval", 16*time.Millisecond, "Axis poll interval")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	v.SetEnvPrefix("AXISPIPE")
	v.AutomaticEnv()

	v.SetConfigName("axispipe")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return &Config{
		ListenAddr:      v.GetString("listen"),
		ProfilePath:     v.GetString("profile"),
		CalibrationPath: v.GetString("calibration"),
		PollInterval:    v.GetDuration("poll-interval"),
	}, nil
}
