package ticket

import (
	"reflect"
	"testing"
	"time"
)

func TestFormatUpdated(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"morning", time.Date(2024, time.February, 5, 9, 7, 0, 0, time.UTC), "05/fev/24 9:07 AM"},
		{"afternoon", time.Date(2024, time.August, 21, 15, 30, 0, 0, time.UTC), "21/ago/24 3:30 PM"},
		{"noon", time.Date(2024, time.December, 1, 12, 0, 0, 0, time.UTC), "01/dez/24 12:00 PM"},
		{"midnight", time.Date(2024, time.May, 31, 0, 45, 0, 0, time.UTC), "31/mai/24 12:45 AM"},
		{"unpadded year", time.Date(2005, time.October, 10, 10, 10, 0, 0, time.UTC), "10/out/5 10:10 AM"},
		{"zero", time.Time{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatUpdated(tt.in); got != tt.want {
				t.Errorf("FormatUpdated() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseUpdated(t *testing.T) {
	for _, in := range []time.Time{
		time.Date(2024, time.February, 5, 9, 7, 0, 0, time.UTC),
		time.Date(2024, time.December, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, time.May, 31, 0, 45, 0, 0, time.UTC),
		time.Date(2023, time.September, 14, 23, 59, 0, 0, time.UTC),
	} {
		got, err := ParseUpdated(FormatUpdated(in), time.UTC)
		if err != nil {
			t.Fatalf("ParseUpdated(%q): %v", FormatUpdated(in), err)
		}
		if !got.Equal(in) {
			t.Errorf("round trip of %v = %v", in, got)
		}
	}

	if _, err := ParseUpdated("05/xyz/24 9:07 AM", time.UTC); err == nil {
		t.Error("expected error for unknown month")
	}
	if got, err := ParseUpdated("", time.UTC); err != nil || !got.IsZero() {
		t.Errorf("ParseUpdated(\"\") = %v, %v", got, err)
	}
}

func TestTicket_Record(t *testing.T) {
	tk := Ticket{
		Type:          "Story",
		Key:           "FFC-12",
		ID:            "10012",
		Summary:       "Pay invoices",
		ParentID:      "10001",
		ParentKey:     "FFC-1",
		ParentSummary: "Billing",
		Status:        "Done",
		Resolution:    "Feito",
		Updated:       time.Date(2024, time.March, 3, 14, 5, 0, 0, time.UTC),
	}
	rec := tk.Record()
	if len(rec) != len(Header) {
		t.Fatalf("len(Record()) = %d, want %d", len(rec), len(Header))
	}
	if rec[1] != "FFC-12" || rec[9] != "03/mar/24 2:05 PM" {
		t.Errorf("Record() = %v", rec)
	}
}

func TestTypeDistribution(t *testing.T) {
	tickets := []Ticket{
		{Type: "Story"}, {Type: "Bug"}, {Type: "Story"},
		{Type: "Task"}, {Type: "Bug"}, {Type: "Story"}, {Type: "Spike"},
	}
	want := []TypeCount{
		{Type: "Story", Count: 3},
		{Type: "Bug", Count: 2},
		{Type: "Spike", Count: 1},
		{Type: "Task", Count: 1},
	}
	if got := TypeDistribution(tickets); !reflect.DeepEqual(got, want) {
		t.Errorf("TypeDistribution() = %v, want %v", got, want)
	}
	if got := TypeDistribution(nil); len(got) != 0 {
		t.Errorf("TypeDistribution(nil) = %v", got)
	}
}
