package config

import (
	"strings"
	"time"
)

// SiteConfig holds crawl settings for a single host.
type SiteConfig struct {
	// UserAgent overrides the User-Agent header for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Timeout overrides the per-request timeout, e.g. "10s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxPages overrides the page limit. Zero keeps the current limit.
	MaxPages int `yaml:"maxPages,omitempty"`

	// IgnorePatterns are URL patterns to skip during crawling.
	// Patterns are matched against the URL path using glob syntax.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL patterns to follow during crawling.
	// If specified, only URLs matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File represents the structure of the .sitescribe configuration file.
type File struct {
	// Sites maps host names (e.g. "docs.example.com") to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every site unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a host, merged over defaults.
// Host lookup is case-insensitive.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	siteConfig, ok := cf.Sites[host]
	if !ok {
		for k, v := range cf.Sites {
			if strings.EqualFold(k, host) {
				siteConfig, ok = v, true
				break
			}
		}
	}
	if !ok {
		return result
	}

	if siteConfig.UserAgent != "" {
		result.UserAgent = siteConfig.UserAgent
	}
	if siteConfig.Timeout > 0 {
		result.Timeout = siteConfig.Timeout
	}
	if siteConfig.MaxPages > 0 {
		result.MaxPages = siteConfig.MaxPages
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}

	return result
}
