package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sitescribe"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxPages of 0 means the crawl stops only when the frontier is empty.
	DefaultMaxPages = 0

	// DefaultUserAgent identifies sitescribe in HTTP requests.
	DefaultUserAgent = "sitescribe/1.0 (+https://github.com/nao1215/sitescribe)"

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for one sitescribe run.
// It is populated from CLI flags and the optional config file and passed
// through the application rather than kept in global state.
type Config struct {
	// SeedURL is the absolute http(s) URL the crawl starts from.
	SeedURL string

	// OutputPath is where the concatenated Markdown document is written.
	OutputPath string

	// Timeout is the timeout for each HTTP request.
	// It does not bound the crawl as a whole.
	Timeout time.Duration

	// MaxPages is the maximum number of pages to attempt.
	// Zero means unlimited.
	MaxPages int

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// IgnorePatterns are glob patterns for links that must not be followed.
	IgnorePatterns []string

	// FollowPatterns, when set, restrict link following to matching URLs.
	FollowPatterns []string

	// ReportFile is the output file path for the crawl summary.
	// When empty, the summary is printed to stdout.
	ReportFile string

	// JSONReport selects the JSON summary format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects the Markdown summary format.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// SaveToDB records the crawl in the history database.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/sitescribe on Linux).
	DBDir string

	// Verbose enables debug logging and disables the progress spinner.
	Verbose bool

	// Quiet suppresses the progress spinner.
	Quiet bool

	// LogFile, when set, additionally writes logs to a rotating file.
	LogFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .sitescribe is searched for in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds the configuration file contents, if one was loaded.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		MaxPages:    DefaultMaxPages,
		MaxBodySize: DefaultMaxBodySize,
		UserAgent:   DefaultUserAgent,
		SaveToDB:    true,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for sitescribe.
// On Linux: ~/.local/share/sitescribe
// On macOS: ~/Library/Application Support/sitescribe
// On Windows: %LOCALAPPDATA%\sitescribe
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitescribe.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeedURL
	}

	if c.OutputPath == "" {
		return ErrNoOutputPath
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.SaveToDB && c.DBDir == "" {
		return ErrNoDBDir
	}

	return nil
}

// Overrides records which settings were set explicitly on the command line.
// Explicit settings win over values from the configuration file.
type Overrides struct {
	UserAgent      bool
	Timeout        bool
	MaxPages       bool
	IgnorePatterns bool
	FollowPatterns bool
}

// ApplySiteConfig merges a site configuration into c.
// Zero values in sc leave the current setting untouched.
func (c *Config) ApplySiteConfig(sc SiteConfig, explicit Overrides) {
	if sc.UserAgent != "" && !explicit.UserAgent {
		c.UserAgent = sc.UserAgent
	}
	if sc.Timeout > 0 && !explicit.Timeout {
		c.Timeout = sc.Timeout
	}
	if sc.MaxPages > 0 && !explicit.MaxPages {
		c.MaxPages = sc.MaxPages
	}
	if len(sc.IgnorePatterns) > 0 && !explicit.IgnorePatterns {
		c.IgnorePatterns = sc.IgnorePatterns
	}
	if len(sc.FollowPatterns) > 0 && !explicit.FollowPatterns {
		c.FollowPatterns = sc.FollowPatterns
	}
}
