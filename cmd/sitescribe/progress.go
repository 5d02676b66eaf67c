package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/briandowns/spinner"

	"github.com/nao1215/sitescribe/internal/model"
)

// progressDisplay shows crawl progress to the user.
type progressDisplay interface {
	Update(p model.ProgressSnapshot)
	Stop()
}

// newProgressDisplay picks how progress is shown. The spinner is only used
// when nothing else writes to the terminal: quiet mode shows nothing and
// verbose mode reports progress through the logger instead.
func newProgressDisplay(w io.Writer, quiet, verbose bool, logger *slog.Logger) progressDisplay {
	switch {
	case quiet:
		return nopDisplay{}
	case verbose:
		return &logDisplay{logger: logger}
	default:
		return newSpinnerDisplay(w)
	}
}

// spinnerDisplay renders "[pct%] message" next to a terminal spinner.
type spinnerDisplay struct {
	s *spinner.Spinner
}

func newSpinnerDisplay(w io.Writer) *spinnerDisplay {
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " starting"
	s.Start()
	return &spinnerDisplay{s: s}
}

func (d *spinnerDisplay) Update(p model.ProgressSnapshot) {
	d.s.Lock()
	d.s.Suffix = formatProgress(p)
	d.s.Unlock()
}

func (d *spinnerDisplay) Stop() {
	d.s.Stop()
}

// logDisplay reports each snapshot as a debug record.
type logDisplay struct {
	logger *slog.Logger
}

func (d *logDisplay) Update(p model.ProgressSnapshot) {
	d.logger.Debug("progress", "percent", p.Percent, "status", p.Message)
}

func (d *logDisplay) Stop() {}

type nopDisplay struct{}

func (nopDisplay) Update(model.ProgressSnapshot) {}
func (nopDisplay) Stop()                         {}

// formatProgress formats a snapshot for the spinner suffix.
func formatProgress(p model.ProgressSnapshot) string {
	return fmt.Sprintf(" [%3d%%] %s", p.Percent, p.Message)
}
