// ABOUTME: Client configuration package
// ABOUTME: Defaults, optional YAML file and per-section validation
// Package config holds the client's settings. Values start from Default,
// may be overridden by a YAML file, and are finally overridden by command
// line flags in cmd/jamradio before Validate runs.
package config
