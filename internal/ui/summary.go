package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"

	"mapscout/internal/listing"
)

// Artifacts names the files a run produced. Empty paths are omitted.
type Artifacts struct {
	CSV    string
	Report string
}

// PrintSummary writes a table of the extracted records followed by the
// artifact paths.
func PrintSummary(w io.Writer, query string, records []listing.Record, files Artifacts) error {
	fmt.Fprintf(w, "\n%s %s: %d businesses\n\n", pterm.Green("✔"), query, len(records))

	if len(records) > 0 {
		data := pterm.TableData{{"#", "Name", "Rating", "Reviews", "Phone"}}
		for i, r := range records {
			data = append(data, []string{
				strconv.Itoa(i + 1),
				r.Name,
				r.Rating,
				strconv.Itoa(r.Reviews),
				r.Phone,
			})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, table)
	}

	if files.CSV != "" {
		fmt.Fprintf(w, "CSV:    %s\n", files.CSV)
	}
	if files.Report != "" {
		fmt.Fprintf(w, "Report: %s\n", files.Report)
	}
	return nil
}
