package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScanning(); err != nil {
		return err
	}
	if err := c.validateGeo(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateScanning() error {
	if c.Scanning.RateLimitPerMinute <= 0 {
		return errors.New("scanning.rate_limit_per_minute must be positive")
	}
	if c.Scanning.RateBurst <= 0 {
		return errors.New("scanning.rate_burst must be positive")
	}
	return nil
}

func (c *Config) validateGeo() error {
	if c.Geo.DefaultRadiusKm <= 0 {
		return errors.New("geo.default_radius_km must be positive")
	}
	if c.Geo.MaxRadiusKm <= 0 {
		return errors.New("geo.max_radius_km must be positive")
	}
	if c.Geo.MaxRadiusKm < c.Geo.DefaultRadiusKm {
		return errors.New("geo.max_radius_km must be at least geo.default_radius_km")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"notifications.request_timeout":     c.Notifications.RequestTimeout,
		"workflow.milestone_check_interval": c.Workflow.MilestoneCheckInterval,
		"workflow.import_rescan_interval":   c.Workflow.ImportRescanInterval,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
