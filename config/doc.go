// Package config loads and validates the board's YAML configuration,
// with .env and BOARD_* environment overrides.
package config
