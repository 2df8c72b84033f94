// Package config loads the process configuration from environment
// variables (with an optional .env file via godotenv) into one immutable
// Config struct, built once at startup and passed to each component.
//
// Viper supplies defaults and environment binding; sections follow the
// ApplyDefaults/Validate convention so cmd/radscribe can fail fast on a
// bad configuration instead of limping into requests.
package config
