package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescribe/internal/config"
	"github.com/nao1215/sitescribe/internal/crawler"
	"github.com/nao1215/sitescribe/internal/database"
	"github.com/nao1215/sitescribe/internal/model"
	"github.com/nao1215/sitescribe/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a website and write its content as Markdown",
		Long: `Crawl visits every page reachable from the seed URL on the same host,
breadth-first, and writes the main content of each page to one Markdown
document. Each page becomes a section headed by its <title>.

Links to other hosts, same-page anchors and non-HTML resources are skipped.
Pages that fail to load are reported in the crawl summary and do not stop
the crawl. Press Ctrl+C to stop early; the pages crawled so far are still
written.

Examples:
  # Crawl a documentation site
  sitescribe crawl https://docs.example.com/ -o docs.md

  # Stop after 50 pages and print a JSON summary
  sitescribe crawl https://docs.example.com/ -o docs.md -p 50 --json

  # Only follow links under /guide/, skip the changelog
  sitescribe crawl https://docs.example.com/guide/ -o guide.md \
    --follow "/guide/*" --ignore "/guide/changelog*"

  # Crawl through a SOCKS5 proxy
  sitescribe crawl https://example.com/ -o site.md --proxy 127.0.0.1:1080

Configuration file (.sitescribe) example:
  defaults:
    timeout: 20s
  sites:
    docs.example.com:
      maxPages: 200
      ignorePatterns:
        - "/api/*"`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Markdown file to write (required; directories are created as needed)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl (0 = unlimited)")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (host:port)")
	cmd.Flags().StringSlice("ignore", nil,
		"Glob pattern of link paths to skip (repeatable)")
	cmd.Flags().StringSlice("follow", nil,
		"Glob pattern of link paths to follow; others are skipped (repeatable)")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitescribe in current or home directory)")

	cmd.Flags().BoolP("json", "j", false,
		"Print the crawl summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the crawl summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write the crawl summary to a file; stdout then gets the text summary unless --quiet")

	cmd.Flags().Bool("no-history", false,
		"Do not record this crawl in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().BoolP("quiet", "q", false,
		"Do not show progress")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, closer := setupLogger(cmd)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildConfig creates a Config from cobra command flags and the
// configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if len(args) > 0 {
		cfg.SeedURL = args[0]
	}

	if cfg.OutputPath, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.IgnorePatterns, err = flags.GetStringSlice("ignore"); err != nil {
		return nil, err
	}
	if cfg.FollowPatterns, err = flags.GetStringSlice("follow"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return nil, err
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.Quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogFile = getLogFileFlag(cmd)

	siteConfigs, configPath, err := config.Load(cfg.ConfigFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if siteConfigs != nil {
		cfg.ConfigFilePath = configPath
		cfg.SiteConfigs = siteConfigs
		cfg.ApplySiteConfig(siteConfigs.GetSiteConfig(seedHost(cfg.SeedURL)), config.Overrides{
			UserAgent:      flags.Changed("user-agent"),
			Timeout:        flags.Changed("timeout"),
			MaxPages:       flags.Changed("max-pages"),
			IgnorePatterns: flags.Changed("ignore"),
			FollowPatterns: flags.Changed("follow"),
		})
	}

	return cfg, nil
}

// seedHost returns the host name of a seed URL, or "" if it does not parse.
// The crawler validates the seed itself.
func seedHost(seed string) string {
	u, err := url.Parse(seed)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// runCrawl executes the crawl and writes its outputs.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	client, err := crawler.NewHTTPClient(cfg.ProxyAddress, 0)
	if err != nil {
		return err
	}

	spider := crawler.NewSpider(client,
		crawler.WithLogger(logger),
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithIgnorePatterns(cfg.IgnorePatterns),
		crawler.WithFollowPatterns(cfg.FollowPatterns),
	)

	logger.Info("starting crawl",
		"seed", cfg.SeedURL,
		"output", cfg.OutputPath,
		"maxPages", cfg.MaxPages,
		"saveToDB", cfg.SaveToDB,
	)

	display := newProgressDisplay(stderr, cfg.Quiet, cfg.Verbose, logger)
	job := spider.Start(ctx, cfg.SeedURL)
	for p := range job.Progress() {
		display.Update(p)
	}
	result, crawlErr := job.Wait()
	display.Stop()

	if result == nil {
		return crawlErr
	}

	interrupted := crawlErr != nil && (errors.Is(crawlErr, context.Canceled) || errors.Is(crawlErr, context.DeadlineExceeded))
	if crawlErr != nil && !interrupted {
		return crawlErr
	}
	if interrupted {
		fmt.Fprintf(stderr, "Crawl interrupted; writing %d of %d pages\n", len(result.Sections), len(result.Visited))
	}

	if err := report.WriteDocument(cfg.OutputPath, result.Markdown()); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Wrote %d sections to %s in %s\n",
		len(result.Sections), cfg.OutputPath, result.Duration().Round(time.Millisecond))

	if err := outputSummary(cfg, result, stdout); err != nil {
		logger.Error("summary failed", "error", err)
	}

	if cfg.SaveToDB {
		if err := saveCrawl(ctx, cfg, result, logger); err != nil {
			logger.Error("failed to record crawl history", "error", err)
		}
	}

	if interrupted {
		return fmt.Errorf("crawl interrupted: %w", crawlErr)
	}
	return nil
}

// outputSummary writes the crawl summary in the requested format.
// With a report file the requested format goes to the file and the terminal
// gets the text summary, unless quiet.
func outputSummary(cfg *config.Config, result *model.CrawlResult, stdout io.Writer) error {
	if cfg.ReportFile == "" {
		_, err := summaryWriter(cfg, stdout).Write(result)
		return err
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	writers := []report.Writer{summaryWriter(cfg, f)}
	if !cfg.Quiet {
		writers = append(writers, report.NewSimpleWriter(stdout, report.WithVerbose(cfg.Verbose)))
	}

	_, err = report.NewMultiWriter(writers...).Write(result)
	return err
}

// summaryWriter returns the writer for the requested summary format.
func summaryWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// saveCrawl records the crawl in the history database.
// The save is not tied to ctx so an interrupted crawl is still recorded.
func saveCrawl(ctx context.Context, cfg *config.Config, result *model.CrawlResult, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	outputPath := cfg.OutputPath
	if abs, err := filepath.Abs(outputPath); err == nil {
		outputPath = abs
	}

	id, err := db.SaveCrawl(context.WithoutCancel(ctx), result, outputPath)
	if err != nil {
		return err
	}

	logger.Info("crawl recorded", "runID", id, "db", db.Path())
	return nil
}
