package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
)

func printResult(out io.Writer, result attendance.ImportResult, committed bool, mode attendance.ImportMode) {
	state := "dry-run"
	if committed {
		state = "committed, " + string(mode)
	}

	fmt.Fprintf(out, "Batch:     %s (%s)\n", result.BatchID, state)
	fmt.Fprintf(out, "Layout:    %s\n", result.Layout)
	fmt.Fprintf(out, "Period:    %s .. %s\n", result.Stats.Period.Start, result.Stats.Period.End)
	fmt.Fprintf(out, "Rows:      %d\n", result.Stats.Total)
	fmt.Fprintf(out, "Records:   %d\n", result.Stats.Matched)
	fmt.Fprintf(out, "Unmatched: %d\n", result.Stats.Unmatched)
	for _, w := range result.Stats.Warnings {
		fmt.Fprintf(out, "Warning:   %s\n", w)
	}

	if len(result.ProcessedRecords) > 0 {
		fmt.Fprintln(out)
		printRecords(out, result.ProcessedRecords)
	}

	if len(result.UnmatchedRows) > 0 {
		fmt.Fprintln(out)
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "LINE\tMATRICULE\tDATE\tREASONS")
		for _, u := range result.UnmatchedRows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.Row.Line, dash(u.Row.Matricule), dash(u.Row.Date), strings.Join(u.Reasons, "; "))
		}
		tw.Flush()
	}
}

func printRecords(out io.Writer, records []attendance.Record) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tMATRICULE\tNAME\tIN\tOUT\tHOURS\tDELAY\tSTATUS\tCREDIT\tHOLIDAY")
	for _, r := range records {
		holidayWorked := ""
		if r.IsHolidayWorked {
			holidayWorked = "worked"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%d\t%s\t%s\t%s\n",
			r.Date, r.Matricule, dash(r.Name), deref(r.FirstIn), deref(r.LastOut),
			r.Hours, r.DelayMin, r.Status, strconv.FormatFloat(float64(r.Credit), 'f', -1, 64), holidayWorked)
	}
	tw.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
