// Package config loads and validates mfdr's TOML configuration. Load resolves
// the config file (explicit path or ~/.config/mfdr/config.toml), layers it
// over Default, expands ~ in every path field, and validates the result.
// WriteSample emits the embedded annotated sample for first-time setup.
package config
