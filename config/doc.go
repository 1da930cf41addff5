// Package config loads and validates the monitor daemon configuration from
// a YAML file, environment variables, and defaults. It declares the server
// address, logging level, probe cadence, and the set of guarded upstreams
// with their breaker parameters.
package config
