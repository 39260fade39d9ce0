// Package config loads server, database, auth, cache and content settings from
// an optional YAML file and PRESS_* environment variables, and validates them
// before anything is wired.
package config
