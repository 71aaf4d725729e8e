package listing

import (
	"reflect"
	"testing"
)

func TestRowMatchesColumns(t *testing.T) {
	r := Record{
		Name:     "Acme Plumbing",
		Phone:    "+1 555 0100",
		Address:  "1 Main St",
		Website:  "https://acme.example",
		Rating:   "4.5",
		Reviews:  1234,
		SourceID: "https://maps.example/place/acme",
	}
	row := r.Row()
	if len(row) != len(Columns) {
		t.Fatalf("len(Row()) = %d, want %d", len(row), len(Columns))
	}
	want := []string{"Acme Plumbing", "+1 555 0100", "1 Main St", "https://acme.example", "4.5", "1234", "https://maps.example/place/acme"}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("Row() = %v, want %v", row, want)
	}
}

func TestResultSetAppendOnly(t *testing.T) {
	s := NewResultSet()
	s.Append(Record{Name: "a"})
	s.Append(Record{Name: "b"})

	got := s.Records()
	if s.Len() != 2 || got[0].Name != "a" || got[1].Name != "b" {
		t.Fatalf("unexpected records: %+v", got)
	}

	// mutating the returned slice must not leak into the set
	got[0].Name = "changed"
	if s.Records()[0].Name != "a" {
		t.Fatalf("Records() exposed internal storage")
	}
}

func TestIsPlaceholder(t *testing.T) {
	placeholders := []string{"Google Maps"}
	cases := []struct {
		name string
		want bool
	}{
		{"Google Maps", true},
		{"  google maps ", true},
		{"Google Maps Cafe", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsPlaceholder(tc.name, placeholders); got != tc.want {
			t.Fatalf("IsPlaceholder(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
