package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/boardflow/pkg/domain/analytics"
	"github.com/felixgeelhaar/boardflow/pkg/domain/board"
	"github.com/felixgeelhaar/boardflow/pkg/domain/ticket"
)

// quoteAll writes one CSV record with every field quoted, the layout the
// cumulative flow chart tooling expects.
func quoteAll(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// quoteMinimal writes one CSV record, quoting only fields that contain a
// comma, a quote or a line break.
func quoteMinimal(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if strings.ContainsAny(f, ",\"\r\n") {
			f = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		}
		if _, err := w.WriteString(f); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// WriteCFD writes one row per snapshot with the reporting columns in order.
func WriteCFD(out io.Writer, snapshots []analytics.DailySnapshot, reporting []string) error {
	w := bufio.NewWriter(out)
	if err := quoteAll(w, append([]string{"Date"}, reporting...)); err != nil {
		return fmt.Errorf("write cfd header: %w", err)
	}
	for _, s := range snapshots {
		row := make([]string, 0, len(reporting)+1)
		row = append(row, s.Date.String())
		for _, col := range reporting {
			row = append(row, strconv.Itoa(s.Count(col)))
		}
		if err := quoteAll(w, row); err != nil {
			return fmt.Errorf("write cfd row %s: %w", s.Date, err)
		}
	}
	return w.Flush()
}

// WriteThroughput writes the weekly throughput series.
func WriteThroughput(out io.Writer, periods []analytics.ThroughputPeriod) error {
	w := bufio.NewWriter(out)
	if err := quoteAll(w, []string{"Period", "Throughput"}); err != nil {
		return fmt.Errorf("write throughput header: %w", err)
	}
	for _, p := range periods {
		if err := quoteAll(w, []string{p.WeekStart.String(), strconv.Itoa(p.Count)}); err != nil {
			return fmt.Errorf("write throughput row: %w", err)
		}
	}
	return w.Flush()
}

// WriteLeadTime writes the lead-time histogram.
func WriteLeadTime(out io.Writer, buckets []analytics.LeadTimeBucket) error {
	w := bufio.NewWriter(out)
	if err := quoteAll(w, []string{"Leadtime", "item count"}); err != nil {
		return fmt.Errorf("write leadtime header: %w", err)
	}
	for _, b := range buckets {
		if err := quoteAll(w, []string{strconv.Itoa(b.Days), strconv.Itoa(b.Count)}); err != nil {
			return fmt.Errorf("write leadtime row: %w", err)
		}
	}
	return w.Flush()
}

// WriteTickets writes tickets in the Jira export layout. Fields are quoted
// only when they contain a comma, a quote or a line break; leading spaces
// are written as is.
func WriteTickets(out io.Writer, tickets []ticket.Ticket) error {
	w := bufio.NewWriter(out)
	if err := quoteMinimal(w, ticket.Header); err != nil {
		return fmt.Errorf("write tickets header: %w", err)
	}
	for _, t := range tickets {
		if err := quoteMinimal(w, t.Record()); err != nil {
			return fmt.Errorf("write ticket %s: %w", t.Key, err)
		}
	}
	return w.Flush()
}

func readRecords(in io.Reader, header []string) ([][]string, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header")
	}
	for i, name := range header {
		if records[0][i] != name {
			return nil, fmt.Errorf("unexpected header %q, want %q", records[0][i], name)
		}
	}
	return records[1:], nil
}

func atoiField(record []string, i int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(record[i]))
	if err != nil {
		return 0, fmt.Errorf("field %d: %w", i+1, err)
	}
	return v, nil
}

// ReadThroughput parses a throughput.csv document.
func ReadThroughput(in io.Reader) ([]analytics.ThroughputPeriod, error) {
	records, err := readRecords(in, []string{"Period", "Throughput"})
	if err != nil {
		return nil, fmt.Errorf("read throughput: %w", err)
	}
	periods := make([]analytics.ThroughputPeriod, 0, len(records))
	for n, rec := range records {
		week, err := board.ParseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("read throughput line %d: %w", n+2, err)
		}
		count, err := atoiField(rec, 1)
		if err != nil {
			return nil, fmt.Errorf("read throughput line %d: %w", n+2, err)
		}
		periods = append(periods, analytics.ThroughputPeriod{WeekStart: week, Count: count})
	}
	return periods, nil
}

// ReadLeadTime parses a leadtime.csv document.
func ReadLeadTime(in io.Reader) ([]analytics.LeadTimeBucket, error) {
	records, err := readRecords(in, []string{"Leadtime", "item count"})
	if err != nil {
		return nil, fmt.Errorf("read leadtime: %w", err)
	}
	buckets := make([]analytics.LeadTimeBucket, 0, len(records))
	for n, rec := range records {
		days, err := atoiField(rec, 0)
		if err != nil {
			return nil, fmt.Errorf("read leadtime line %d: %w", n+2, err)
		}
		count, err := atoiField(rec, 1)
		if err != nil {
			return nil, fmt.Errorf("read leadtime line %d: %w", n+2, err)
		}
		buckets = append(buckets, analytics.LeadTimeBucket{Days: days, Count: count})
	}
	return buckets, nil
}

// ReadCFD parses a cfd.csv document. The reporting columns are taken from
// its header.
func ReadCFD(in io.Reader) ([]analytics.DailySnapshot, []string, error) {
	r := csv.NewReader(in)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read cfd: %w", err)
	}
	if len(records) == 0 || len(records[0]) == 0 || records[0][0] != "Date" {
		return nil, nil, fmt.Errorf("read cfd: missing Date header")
	}
	reporting := records[0][1:]

	snapshots := make([]analytics.DailySnapshot, 0, len(records)-1)
	for n, rec := range records[1:] {
		day, err := board.ParseDate(rec[0])
		if err != nil {
			return nil, nil, fmt.Errorf("read cfd line %d: %w", n+2, err)
		}
		counts := make(map[string]int, len(reporting))
		for i, col := range reporting {
			v, err := atoiField(rec, i+1)
			if err != nil {
				return nil, nil, fmt.Errorf("read cfd line %d: %w", n+2, err)
			}
			counts[col] = v
		}
		snapshots = append(snapshots, analytics.DailySnapshot{Date: day, Counts: counts})
	}
	return snapshots, reporting, nil
}

// ReadTickets parses a tickets.csv document in loc.
func ReadTickets(in io.Reader, loc *time.Location) ([]ticket.Ticket, error) {
	records, err := readRecords(in, ticket.Header)
	if err != nil {
		return nil, fmt.Errorf("read tickets: %w", err)
	}
	tickets := make([]ticket.Ticket, 0, len(records))
	for n, rec := range records {
		updated, err := ticket.ParseUpdated(rec[9], loc)
		if err != nil {
			return nil, fmt.Errorf("read tickets line %d: %w", n+2, err)
		}
		tickets = append(tickets, ticket.Ticket{
			Type:          rec[0],
			Key:           rec[1],
			ID:            rec[2],
			Summary:       rec[3],
			ParentID:      rec[4],
			ParentKey:     rec[5],
			ParentSummary: rec[6],
			Status:        rec[7],
			Resolution:    rec[8],
			Updated:       updated,
		})
	}
	return tickets, nil
}
