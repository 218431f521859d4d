// Package config defines the application's configuration structure and
// loading logic. Configuration comes from environment variables with the
// MASTERY_ prefix, is unmarshalled via viper, and is validated with
// go-playground/validator struct tags before use.
package config
