package export

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"mapscout/internal/listing"
)

func records(n int) []listing.Record {
	out := make([]listing.Record, n)
	for i := range out {
		out[i] = listing.Record{
			Name:     fmt.Sprintf("Business %03d", i+1),
			Phone:    listing.NA,
			Address:  "1 Main St, Springfield",
			Website:  listing.NA,
			Rating:   "4.5",
			Reviews:  i,
			SourceID: fmt.Sprintf("https://www.google.com/maps/place/%d", i+1),
		}
	}
	return out
}

func TestPaths(t *testing.T) {
	now := time.Date(2026, 3, 4, 15, 6, 7, 0, time.UTC)
	csvPath, reportPath := Paths("out", "Bakeries in Austin, TX!", now)
	if want := filepath.Join("out", "bakeries_in_austin_tx_20260304_150607.csv"); csvPath != want {
		t.Fatalf("csv path = %q, want %q", csvPath, want)
	}
	if !strings.HasSuffix(reportPath, "_150607.docx") {
		t.Fatalf("report path = %q", reportPath)
	}

	csvPath, _ = Paths("out", "  ", now)
	if !strings.Contains(csvPath, "results_") {
		t.Fatalf("empty query path = %q", csvPath)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "run.csv")
	recs := records(3)
	if err := WriteCSV(path, recs); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if !reflect.DeepEqual(rows[0], listing.Columns) {
		t.Fatalf("header = %v", rows[0])
	}
	if !reflect.DeepEqual(rows[2], recs[1].Row()) {
		t.Fatalf("row = %v, want %v", rows[2], recs[1].Row())
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := WriteCSV(path, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Count(string(b), "\n") != 1 {
		t.Fatalf("expected header only, got %q", b)
	}
}

func documentXML(t *testing.T, path string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open docx: %v", err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read document.xml: %v", err)
		}
		return string(b)
	}
	t.Fatal("word/document.xml missing")
	return ""
}

func TestWriteReportCapsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.docx")
	if err := WriteReport(path, "Bakeries", records(5), 3); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	doc := documentXML(t, path)
	for _, want := range []string{"Bakeries", "3 businesses", "Business 001", "Business 003"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("report missing %q", want)
		}
	}
	if strings.Contains(doc, "Business 004") {
		t.Fatal("report exceeds limit")
	}
}

func TestWriteReportDefaultLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.docx")
	if err := WriteReport(path, "Many", records(DefaultReportLimit+5), 0); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	doc := documentXML(t, path)
	if !strings.Contains(doc, "Business 100") || strings.Contains(doc, "Business 101") {
		t.Fatal("default limit not applied")
	}
}
