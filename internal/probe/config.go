// Package probe drives a running relay with every vehicle, fuel and
// preference combination and reports how each one was answered.
package probe

import (
	"errors"
	"net/url"
	"time"
)

// Config holds probe settings.
type Config struct {
	BaseURL     string
	Origin      string
	Destination string
	Repeat      int
	Workers     int
	Timeout     time.Duration
	Verbose     bool
}

// Validate checks the settings Run depends on.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("base URL must be absolute")
	}
	if c.Origin == "" || c.Destination == "" {
		return errors.New("origin and destination are required")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if c.Repeat <= 0 {
		return errors.New("repeat must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}
