// Package config loads bootstrap configuration from multiple sources (YAML
// file, .env file, environment variables, CLI flags) with precedence: CLI
// flags > Environment variables > YAML config > Defaults. The .env file is
// exported before the environment is read, so it feeds the environment layer.
package config
