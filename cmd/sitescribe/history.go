package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescribe/internal/config"
	"github.com/nao1215/sitescribe/internal/database"
	"github.com/nao1215/sitescribe/internal/model"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [host]",
		Short: "Show recorded crawls and compare them",
		Long: `History lists the crawls recorded in the local history database.

Every crawl stores its pages together with a hash of each page's Markdown
section, so two crawls of the same host can be compared to see which pages
were added, removed or changed.

Examples:
  # List every recorded crawl
  sitescribe history

  # List crawls of one host
  sitescribe history docs.example.com

  # Show the pages of one crawl
  sitescribe history --pages 12

  # Compare the latest two crawls of a host
  sitescribe history --diff docs.example.com

  # Compare the latest crawl with a specific earlier crawl
  sitescribe history --diff --with-run-id 7 docs.example.com

  # List the hosts that have recorded crawls
  sitescribe history --hosts

  # Remove one crawl from the history
  sitescribe history --delete 12`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("pages", "P", 0, "Show the pages of the crawl with this run ID")
	cmd.Flags().BoolP("diff", "d", false, "Compare the latest crawl of the host with an earlier one")
	cmd.Flags().Int64P("with-run-id", "i", 0, "Earlier crawl to compare with (default: the previous crawl)")
	cmd.Flags().BoolP("hosts", "H", false, "List the hosts that have recorded crawls")
	cmd.Flags().Int64("delete", 0, "Delete the crawl with this run ID")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	pagesRunID, err := flags.GetInt64("pages")
	if err != nil {
		return err
	}
	diff, err := flags.GetBool("diff")
	if err != nil {
		return err
	}
	withRunID, err := flags.GetInt64("with-run-id")
	if err != nil {
		return err
	}
	hosts, err := flags.GetBool("hosts")
	if err != nil {
		return err
	}
	deleteRunID, err := flags.GetInt64("delete")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}

	var host string
	if len(args) > 0 {
		host = strings.ToLower(args[0])
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl history found.")
		fmt.Fprintln(cmd.OutOrStdout(), "\nUse 'sitescribe crawl <url> -o <file>' to crawl a site.")
		return nil //nolint:nilerr // a missing database just means nothing was recorded yet
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case deleteRunID > 0:
		return deleteRun(ctx, out, db, deleteRunID)
	case pagesRunID > 0:
		return showRunPages(ctx, out, db, pagesRunID, jsonOutput)
	case diff:
		if host == "" {
			return errors.New("--diff requires a host")
		}
		return showDiff(ctx, out, db, host, withRunID, jsonOutput)
	case hosts:
		return listHosts(ctx, out, db, jsonOutput)
	default:
		return listRuns(ctx, out, db, host, jsonOutput)
	}
}

// listRuns lists recorded crawls, newest first.
func listRuns(ctx context.Context, w io.Writer, db *database.CrawlDB, host string, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, host)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(w, runs)
	}

	if len(runs) == 0 {
		if host != "" {
			fmt.Fprintf(w, "No crawls recorded for %s\n", host)
		} else {
			fmt.Fprintln(w, "No crawls recorded.")
		}
		return nil
	}

	fmt.Fprintf(w, "Recorded crawls (%d):\n\n", len(runs))
	fmt.Fprintf(w, "  %-6s  %-19s  %-30s  %6s  %6s  %s\n", "ID", "Date", "Host", "Pages", "Failed", "Status")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 84))
	for _, run := range runs {
		fmt.Fprintf(w, "  %-6d  %-19s  %-30s  %6d  %6d  %s\n",
			run.ID,
			run.StartedAt.Local().Format(historyTimeLayout),
			truncate(run.Host, 30),
			run.PagesAttempted,
			run.PagesFailed,
			runStatus(&run),
		)
	}

	fmt.Fprintln(w, "\nUse 'sitescribe history --pages <id>' to list the pages of a crawl.")
	fmt.Fprintln(w, "Use 'sitescribe history --diff <host>' to compare the latest two crawls.")
	return nil
}

// listHosts lists every host with recorded crawls.
func listHosts(ctx context.Context, w io.Writer, db *database.CrawlDB, jsonOutput bool) error {
	hosts, err := db.ListHosts(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(w, hosts)
	}

	if len(hosts) == 0 {
		fmt.Fprintln(w, "No crawls recorded.")
		return nil
	}

	fmt.Fprintf(w, "Recorded hosts (%d):\n\n", len(hosts))
	for _, h := range hosts {
		fmt.Fprintf(w, "  %s\n", h)
	}
	return nil
}

// deleteRun removes one crawl and its pages.
func deleteRun(ctx context.Context, w io.Writer, db *database.CrawlDB, runID int64) error {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("crawl with ID %d not found", runID)
	}

	if err := db.DeleteRun(ctx, runID); err != nil {
		return err
	}

	fmt.Fprintf(w, "Deleted crawl %d of %s\n", run.ID, run.Host)
	return nil
}

// runStatus describes how a recorded crawl ended.
func runStatus(run *database.RunRecord) string {
	switch {
	case run.Cancelled:
		return "cancelled"
	case run.Remaining > 0:
		return "limited"
	default:
		return "complete"
	}
}

// showRunPages lists the pages of one crawl.
func showRunPages(ctx context.Context, w io.Writer, db *database.CrawlDB, runID int64, jsonOutput bool) error {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("crawl with ID %d not found", runID)
	}

	pages, err := db.GetRunPages(ctx, runID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(w, struct {
			Run   *database.RunRecord `json:"run"`
			Pages []model.PageRecord  `json:"pages"`
		}{run, pages})
	}

	fmt.Fprintf(w, "Crawl %d of %s (%s, %s)\n",
		run.ID, run.Seed, run.StartedAt.Local().Format(historyTimeLayout), run.Duration().Round(time.Millisecond))
	if run.OutputPath != "" {
		fmt.Fprintf(w, "Output: %s\n", run.OutputPath)
	}
	fmt.Fprintln(w)

	for _, p := range pages {
		switch {
		case p.Failed():
			fmt.Fprintf(w, "  [FAIL] %s (%s)\n", p.URL, p.Error)
		case p.HasContent:
			fmt.Fprintf(w, "  [ OK ] %s  %s\n", p.URL, p.Title)
		default:
			fmt.Fprintf(w, "  [SKIP] %s (no content)\n", p.URL)
		}
	}
	return nil
}

// runComparison is the JSON form of a diff between two crawls.
type runComparison struct {
	Host     string              `json:"host"`
	Previous *database.RunRecord `json:"previous"`
	Current  *database.RunRecord `json:"current"`
	Diff     *database.PageDiff  `json:"diff"`
}

// showDiff compares the latest crawl of host with an earlier one.
func showDiff(ctx context.Context, w io.Writer, db *database.CrawlDB, host string, withRunID int64, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, host)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no crawls recorded for %s", host)
	}

	current := &runs[0]
	var previous *database.RunRecord

	if withRunID > 0 {
		previous, err = db.GetRun(ctx, withRunID)
		if err != nil {
			return err
		}
		if previous == nil {
			return fmt.Errorf("crawl with ID %d not found", withRunID)
		}
		if !strings.EqualFold(previous.Host, host) {
			return fmt.Errorf("crawl %d belongs to %s, not %s", withRunID, previous.Host, host)
		}
		if previous.ID == current.ID {
			return fmt.Errorf("crawl %d is the latest crawl of %s; pick an earlier one", withRunID, host)
		}
	} else {
		if len(runs) < 2 {
			return fmt.Errorf("at least 2 crawls are required for comparison (found %d)", len(runs))
		}
		previous = &runs[1]
	}

	previousPages, err := db.GetRunPages(ctx, previous.ID)
	if err != nil {
		return err
	}
	currentPages, err := db.GetRunPages(ctx, current.ID)
	if err != nil {
		return err
	}

	diff := database.ComparePages(previousPages, currentPages)

	if jsonOutput {
		return writeJSON(w, &runComparison{Host: host, Previous: previous, Current: current, Diff: diff})
	}

	fmt.Fprintf(w, "Crawl Comparison: %s\n", host)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "\nPrevious crawl: #%d  %s  (%d pages)\n",
		previous.ID, previous.StartedAt.Local().Format(historyTimeLayout), previous.PagesAttempted)
	fmt.Fprintf(w, "Current crawl:  #%d  %s  (%d pages)\n",
		current.ID, current.StartedAt.Local().Format(historyTimeLayout), current.PagesAttempted)

	if !diff.HasChanges() {
		fmt.Fprintf(w, "\nNo changes (%d pages unchanged)\n", diff.Unchanged)
		return nil
	}

	writePageList(w, "Added", "+", diff.Added)
	writePageList(w, "Removed", "-", diff.Removed)
	writePageList(w, "Changed", "~", diff.Changed)
	fmt.Fprintf(w, "\nUnchanged: %d pages\n", diff.Unchanged)
	return nil
}

func writePageList(w io.Writer, title, marker string, pages []model.PageRecord) {
	if len(pages) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d):\n", title, len(pages))
	for _, p := range pages {
		fmt.Fprintf(w, "  [%s] %s\n", marker, p.URL)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// truncate shortens s to maxLen runes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
