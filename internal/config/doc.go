// Package config handles loading, validation, and access to application
// configuration from files and environment variables.
package config
