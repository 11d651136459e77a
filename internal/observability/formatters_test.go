package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/job-aggregator/internal/ingest"
	"github.com/jonathan/job-aggregator/internal/ops"
	"github.com/jonathan/job-aggregator/internal/types"
)

func TestPrintIngestReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintIngestReport(&ingest.Report{
		Received: 12,
		Stored:   9,
		Skipped:  3,
		Errors:   []string{"upsert failed for one row"},
	})
	output := buf.String()

	assert.Contains(t, output, "INGEST REPORT")
	assert.Contains(t, output, "Received: 12")
	assert.Contains(t, output, "Stored:   9")
	assert.Contains(t, output, "upsert failed")
}

func TestPrintIngestReport_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintIngestReport(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRecomputeReport(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRecomputeReport(&ops.RecomputeReport{Postings: 100, Companies: 7, Inserted: 7, Deleted: 5})

	assert.Contains(t, buf.String(), "RECOMPUTE REPORT")
	assert.Contains(t, buf.String(), "Companies: 7")
	assert.Contains(t, buf.String(), "Deleted:   5")
}

func TestPrintPosting(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintPosting(&types.JobPosting{
		Title:             "Senior Engineer",
		Company:           "Acme",
		Location:          "Denver, Colorado",
		Level:             types.LevelSenior,
		TotalCompensation: 180000,
		CurrencyCode:      "USD",
	})
	output := buf.String()

	assert.Contains(t, output, "Senior Engineer")
	assert.Contains(t, output, "Denver, Colorado")
	assert.Contains(t, output, "180000 USD")
}
