// Package config loads the application configuration from YAML with
// sensible defaults for every setting. Search order is ./ragwatch.yaml then
// ~/.config/ragwatch/config.yaml; a missing file is not an error. API keys
// are expected in the environment, typically via a .env file loaded at
// startup.
package config
