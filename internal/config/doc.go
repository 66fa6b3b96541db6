// Package config handles configuration loading, parsing, and validation
// from environment variables, an optional .env file and an optional YAML
// config file. Every key has a default; environment variables use the
// SCAFFOLD_ prefix with nested keys joined by underscores.
package config
