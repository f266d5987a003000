package board

import (
	"errors"
	"testing"
	"time"
)

func TestDate_WeekStart(t *testing.T) {
	tests := []struct {
		name string
		date Date
		want Date
	}{
		{"monday", NewDate(2024, time.January, 15), NewDate(2024, time.January, 15)},
		{"wednesday", NewDate(2024, time.January, 17), NewDate(2024, time.January, 15)},
		{"sunday", NewDate(2024, time.January, 21), NewDate(2024, time.January, 15)},
		{"across month", NewDate(2024, time.March, 2), NewDate(2024, time.February, 26)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.date.WeekStart()
			if got != tt.want {
				t.Errorf("WeekStart() = %v, want %v", got, tt.want)
			}
			if got.Weekday() != time.Monday {
				t.Errorf("WeekStart() weekday = %v, want Monday", got.Weekday())
			}
		})
	}
}

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2024, time.February, 28)
	if got := d.AddDays(2); got != NewDate(2024, time.March, 1) {
		t.Errorf("AddDays(2) = %v, want 2024-03-01", got)
	}
	if got := NewDate(2024, time.March, 4).DaysSince(d); got != 5 {
		t.Errorf("DaysSince = %d, want 5", got)
	}
	if got := d.DaysSince(NewDate(2024, time.March, 4)); got != -5 {
		t.Errorf("DaysSince reversed = %d, want -5", got)
	}
	if d.String() != "2024-02-28" {
		t.Errorf("String() = %q", d.String())
	}

	parsed, err := ParseDate("2024-02-28")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if parsed != d {
		t.Errorf("ParseDate = %v, want %v", parsed, d)
	}
	if _, err := ParseDate("28/02/2024"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestWindow_Days(t *testing.T) {
	w := Window{First: NewDate(2024, time.January, 1), Last: NewDate(2024, time.January, 10)}
	if w.Days() != 10 {
		t.Errorf("Days() = %d, want 10", w.Days())
	}
	if !w.Contains(NewDate(2024, time.January, 10)) || w.Contains(NewDate(2024, time.January, 11)) {
		t.Error("Contains() is not inclusive of exactly the window bounds")
	}
	inverted := Window{First: w.Last, Last: w.First}
	if inverted.Days() != 0 {
		t.Errorf("inverted Days() = %d, want 0", inverted.Days())
	}
}

func TestDeriveWindow(t *testing.T) {
	loc := time.UTC
	log := TransitionLog{
		EnterColumn("A-1", time.Date(2024, 1, 10, 9, 0, 0, 0, loc), 1),
		EnterColumn("A-1", time.Date(2024, 1, 20, 9, 0, 0, 0, loc), 4),
	}
	today := NewDate(2024, time.January, 25)

	t.Run("no lookback spans the log", func(t *testing.T) {
		w, ok := DeriveWindow(log, loc, nil, today)
		if !ok {
			t.Fatal("expected a window")
		}
		if w.First != NewDate(2024, time.January, 10) || w.Last != NewDate(2024, time.January, 20) {
			t.Errorf("window = %v", w)
		}
	})

	t.Run("short lookback moves first day forward", func(t *testing.T) {
		days := 7
		w, _ := DeriveWindow(log, loc, &days, today)
		if w.First != NewDate(2024, time.January, 18) {
			t.Errorf("First = %v, want 2024-01-18", w.First)
		}
	})

	t.Run("long lookback is clamped to earliest transition", func(t *testing.T) {
		days := 365
		w, _ := DeriveWindow(log, loc, &days, today)
		if w.First != NewDate(2024, time.January, 10) {
			t.Errorf("First = %v, want 2024-01-10", w.First)
		}
	})

	t.Run("empty log", func(t *testing.T) {
		if _, ok := DeriveWindow(nil, loc, nil, today); ok {
			t.Error("expected no window for an empty log")
		}
	})
}

func TestCutoff(t *testing.T) {
	today := NewDate(2024, time.January, 25)
	if Cutoff(nil, today) != nil {
		t.Error("nil lookback should give nil cutoff")
	}
	zero := 0
	if Cutoff(&zero, today) != nil {
		t.Error("zero lookback should give nil cutoff")
	}
	days := 5
	if got := Cutoff(&days, today); got == nil || *got != NewDate(2024, time.January, 20) {
		t.Errorf("Cutoff = %v, want 2024-01-20", got)
	}
}

func TestSchema_Resolve(t *testing.T) {
	tests := []struct {
		name string
		cols []string
		want Resolution
	}{
		{
			name: "both markers",
			cols: []string{"READY TO DEV", "In Progress", "CODE REVIEW", "done"},
			want: Resolution{Markers: DefaultMarkers(), Active: 1, ActiveFound: true, Terminal: 3, TerminalFound: true},
		},
		{
			name: "missing active",
			cols: []string{"TODO", "DOING", "DONE"},
			want: Resolution{Markers: DefaultMarkers(), Active: -1, Terminal: 2, TerminalFound: true},
		},
		{
			name: "missing terminal",
			cols: []string{"IN PROGRESS", "SHIPPED"},
			want: Resolution{Markers: DefaultMarkers(), Active: 0, ActiveFound: true, Terminal: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSchema(tt.cols...).Resolve(DefaultMarkers())
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		data := []byte(`{
			"columns": [{"name": "Ready to Dev"}, {"name": "In Progress"}, {"name": "Done"}],
			"columnChanges": {
				"1705312800000": [{"key": "FFC-1", "columnTo": 1, "statusTo": "3"}],
				"1705399200000": [{"key": "FFC-1", "columnFrom": 1}]
			}
		}`)
		p, err := DecodePayload(data)
		if err != nil {
			t.Fatalf("DecodePayload: %v", err)
		}
		if got := p.Schema().Names(); len(got) != 3 || got[1] != "IN PROGRESS" {
			t.Errorf("Schema().Names() = %v", got)
		}
		if len(p.ColumnChanges) != 2 {
			t.Errorf("ColumnChanges = %d entries, want 2", len(p.ColumnChanges))
		}
	})

	t.Run("empty document", func(t *testing.T) {
		p, err := DecodePayload([]byte("  "))
		if err != nil {
			t.Fatalf("DecodePayload: %v", err)
		}
		log, err := BuildTransitionLog(p)
		if err != nil || len(log) != 0 {
			t.Errorf("expected empty log, got %v (%v)", log, err)
		}
	})

	t.Run("non numeric timestamp", func(t *testing.T) {
		_, err := DecodePayload([]byte(`{"columnChanges": {"yesterday": []}}`))
		if !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("err = %v, want ErrInvalidPayload", err)
		}
	})

	t.Run("move without key", func(t *testing.T) {
		_, err := DecodePayload([]byte(`{"columnChanges": {"1": [{"columnTo": 1}]}}`))
		if !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("err = %v, want ErrInvalidPayload", err)
		}
	})
}

func intPtr(v int) *int { return &v }

func TestBuildTransitionLog(t *testing.T) {
	p := &Payload{
		ColumnChanges: map[string][]Move{
			"3000": {{Key: "B", ColumnFrom: intPtr(2)}},
			"1000": {{Key: "A", ColumnTo: intPtr(0)}, {Key: "A", ColumnTo: intPtr(1)}},
			"2000": {{Key: "B", ColumnTo: intPtr(2)}, {Key: "C"}},
		},
	}

	log, err := BuildTransitionLog(p)
	if err != nil {
		t.Fatalf("BuildTransitionLog: %v", err)
	}
	if len(log) != 4 {
		t.Fatalf("len(log) = %d, want 4", len(log))
	}

	want := []struct {
		key  string
		ms   int64
		kind TransitionKind
		col  int
	}{
		{"A", 1000, Enter, 0},
		{"A", 1000, Enter, 1},
		{"B", 2000, Enter, 2},
		{"B", 3000, Exit, -1},
	}
	for i, w := range want {
		got := log[i]
		if got.IssueKey != w.key || got.At.UnixMilli() != w.ms || got.Kind != w.kind || got.Column != w.col {
			t.Errorf("log[%d] = %+v, want %+v", i, got, w)
		}
	}

	if _, ok := log[3].Target(); ok {
		t.Error("exit transition should have no target")
	}
}

func TestBuildTransitionLog_InvalidTimestamp(t *testing.T) {
	p := &Payload{ColumnChanges: map[string][]Move{"abc": {{Key: "A", ColumnTo: intPtr(0)}}}}
	if _, err := BuildTransitionLog(p); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("err = %v, want ErrInvalidTimestamp", err)
	}
}

func TestBuildTransitionLog_Nil(t *testing.T) {
	log, err := BuildTransitionLog(nil)
	if err != nil || len(log) != 0 {
		t.Errorf("BuildTransitionLog(nil) = %v, %v", log, err)
	}
}
