// Package config defines the deployer settings and loads them from layered
// sources: built-in defaults, an optional YAML file, an optional .env file,
// DEPLOYER_* environment variables and explicit overrides (CLI flags).
//
// Validate enforces the inputs a run cannot start without.
package config
