// Package config holds the run configuration for sitescribe: defaults,
// validation, the optional .sitescribe YAML file with per-host overrides,
// and the XDG directories used for crawl history.
package config
