// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/job-aggregator/internal/ingest"
	"github.com/jonathan/job-aggregator/internal/ops"
	"github.com/jonathan/job-aggregator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxErrorsToShow is the number of per-record errors to display
	maxErrorsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintIngestReport outputs a human-readable summary of one intake run.
func (p *Printer) PrintIngestReport(report *ingest.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Received: %d\n", report.Received))
	sb.WriteString(fmt.Sprintf("Stored:   %d\n", report.Stored))
	sb.WriteString(fmt.Sprintf("Skipped:  %d\n", report.Skipped))
	sb.WriteString(fmt.Sprintf("Enqueued: %d\n", report.Enqueued))

	if len(report.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		count := min(len(report.Errors), maxErrorsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", report.Errors[i]))
		}
		if len(report.Errors) > maxErrorsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.Errors)-maxErrorsToShow))
		}
	}

	p.printBox("INGEST REPORT", sb.String())
}

// PrintRecomputeReport outputs a summary of one rollup rebuild.
func (p *Printer) PrintRecomputeReport(report *ops.RecomputeReport) {
	if report == nil {
		return
	}

	content := fmt.Sprintf("Postings:  %d\nCompanies: %d\nInserted:  %d\nDeleted:   %d",
		report.Postings, report.Companies, report.Inserted, report.Deleted)
	p.printBox("RECOMPUTE REPORT", content)
}

// PrintBackfillReport outputs a summary of one backfill pass.
func (p *Printer) PrintBackfillReport(report *ops.BackfillReport) {
	if report == nil {
		return
	}

	content := fmt.Sprintf("Scanned: %d\nUpdated: %d", report.Scanned, report.Updated)
	p.printBox("BACKFILL REPORT", content)
}

// PrintSweepReport outputs a summary of one queue sweep.
func (p *Printer) PrintSweepReport(report *ops.SweepReport) {
	if report == nil {
		return
	}

	p.printBox("SWEEP REPORT", fmt.Sprintf("Removed: %d", report.Removed))
}

// PrintPosting outputs a one-posting summary, used by ingest verbose mode.
func (p *Printer) PrintPosting(job *types.JobPosting) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", job.Title))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", job.Company))
	if job.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", job.Location))
	}
	if job.Level != "" {
		sb.WriteString(fmt.Sprintf("Level:    %s\n", job.Level))
	}
	if !job.CompensationUnknown {
		sb.WriteString(fmt.Sprintf("Pay:      %d %s\n", job.TotalCompensation, job.CurrencyCode))
	}
	if job.ScrapedAt > 0 {
		sb.WriteString(fmt.Sprintf("Scraped:  %s\n", time.UnixMilli(job.ScrapedAt).Format(time.RFC3339)))
	}

	p.printBox("POSTING", sb.String())
}
