package listing

import (
	"strconv"
	"strings"
)

// NA marks a field the detail page did not expose.
const NA = "N/A"

// Columns is the fixed tabular schema, in Record.Row order.
var Columns = []string{
	"Business Name",
	"Phone Number",
	"Full Address",
	"Website",
	"Rating",
	"Total Reviews",
	"Source Id",
}

// Record holds the fields recovered from one business detail page.
type Record struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Website  string `json:"website"`
	Rating   string `json:"rating"`
	Reviews  int    `json:"reviews"`
	SourceID string `json:"source_id"`
}

// Row returns the record as strings matching Columns.
func (r Record) Row() []string {
	return []string{
		r.Name,
		r.Phone,
		r.Address,
		r.Website,
		r.Rating,
		strconv.Itoa(r.Reviews),
		r.SourceID,
	}
}

// ResultSet is an append-only sequence of records for one run.
type ResultSet struct {
	records []Record
}

// NewResultSet creates an empty ResultSet.
func NewResultSet() *ResultSet {
	return &ResultSet{}
}

// Append adds a record to the end of the set.
func (s *ResultSet) Append(r Record) {
	s.records = append(s.records, r)
}

// Len returns the number of records.
func (s *ResultSet) Len() int {
	return len(s.records)
}

// Records returns a copy of the records in insertion order.
func (s *ResultSet) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// IsPlaceholder reports whether name is one of the host application's own titles
// rather than a business name.
func IsPlaceholder(name string, placeholders []string) bool {
	name = strings.TrimSpace(name)
	for _, p := range placeholders {
		if strings.EqualFold(name, strings.TrimSpace(p)) {
			return true
		}
	}
	return false
}
