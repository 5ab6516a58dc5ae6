// Package config loads and validates driftwatch configuration from TOML.
//
// Configuration resolution order: an explicit --config path, then
// ~/.config/driftwatch/config.toml, then ./driftwatch.toml. Missing files
// fall back to built-in defaults; credentials may also arrive through
// environment variables so the file never has to hold secrets.
package config
