// Package config loads, normalizes, and validates lookahead configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type gathers the scheduler
// sizing knobs, rate-control inputs that decide whether keyframe propagation
// runs, the decision journal location, and log output settings.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
