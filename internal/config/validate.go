package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLookahead(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLookahead() error {
	l := c.Lookahead
	if l.SyncLookahead < 0 || l.SyncLookahead > maxSyncLookahead {
		return fmt.Errorf("lookahead.sync_lookahead must be between 0 and %d", maxSyncLookahead)
	}
	if l.ReorderDelay < 0 || l.ReorderDelay > maxReorderDelay {
		return fmt.Errorf("lookahead.reorder_delay must be between 0 and %d", maxReorderDelay)
	}
	if l.KeyintMax < 1 {
		return errors.New("lookahead.keyint_max must be positive")
	}
	if l.DecisionWindow < 0 {
		return errors.New("lookahead.decision_window must be >= 0")
	}
	if l.DecisionWindow > l.ReorderDelay+2 {
		return fmt.Errorf("lookahead.decision_window must not exceed reorder_delay+2 (%d)", l.ReorderDelay+2)
	}
	if err := ensureNonNegativeMap(map[string]int{
		"lookahead.vbv_buffer_size": l.VBVBufferSize,
		"lookahead.rc_lookahead":    l.RCLookahead,
	}); err != nil {
		return err
	}
	if l.StatRead && !c.Journal.Enabled {
		return errors.New("lookahead.stat_read requires journal.enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}

func ensureNonNegativeMap(values map[string]int) error {
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}
