// Package export writes a run's records to the tabular file and the report document.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gingfrederik/docx"

	"mapscout/internal/listing"
)

// DefaultReportLimit caps the records written to the report.
const DefaultReportLimit = 100

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Paths returns the CSV and report file paths for a query run at now.
func Paths(dir, query string, now time.Time) (csvPath, reportPath string) {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(query), "_"), "_")
	if slug == "" {
		slug = "results"
	}
	base := filepath.Join(dir, fmt.Sprintf("%s_%s", slug, now.Format("20060102_150405")))
	return base + ".csv", base + ".docx"
}

// WriteCSV writes records under the fixed column header.
func WriteCSV(path string, records []listing.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(listing.Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write(r.Row()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteReport renders at most limit records as a DOCX document. A
// non-positive limit means DefaultReportLimit.
func WriteReport(path, title string, records []listing.Record, limit int) error {
	if limit <= 0 {
		limit = DefaultReportLimit
	}
	if len(records) > limit {
		records = records[:limit]
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	f := docx.NewFile()

	run := f.AddParagraph().AddText(title)
	run.Size(20)
	run = f.AddParagraph().AddText(fmt.Sprintf("%d businesses", len(records)))
	run.Color("808080")
	f.AddParagraph()

	for i, r := range records {
		run = f.AddParagraph().AddText(fmt.Sprintf("%d. %s", i+1, r.Name))
		run.Size(14)

		if r.Rating != listing.NA {
			f.AddParagraph().AddText(fmt.Sprintf("Rating: %s (%d reviews)", r.Rating, r.Reviews))
		}
		f.AddParagraph().AddText("Phone: " + r.Phone)
		f.AddParagraph().AddText("Address: " + r.Address)
		f.AddParagraph().AddText("Website: " + r.Website)

		run = f.AddParagraph().AddText(r.SourceID)
		run.Size(9)
		run.Color("0000FF")
		f.AddParagraph()
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}
