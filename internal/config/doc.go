// Package config loads runtime configuration of the admin service from multiple
// sources (YAML files, environment variables, CLI flags) with precedence:
// CLI flags > YAML config > Environment variables > Defaults. The CMS site
// configuration itself is not loaded here; this package only records where it
// lives.
package config
