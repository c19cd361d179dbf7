package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/utkarsh5026/batchq/queue"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

// row is one rendered line of the results table.
type row struct {
	input    string
	status   string
	attempts int
	elapsed  time.Duration
	detail   string
}

// buildRows pairs every outcome with its input. format renders a success value.
func buildRows[R any](inputs []string, outcomes []queue.Outcome[R], format func(R) string) []row {
	rows := make([]row, len(outcomes))
	for i, out := range outcomes {
		r := row{
			attempts: out.Attempts,
			elapsed:  out.Elapsed,
		}
		if out.Index < len(inputs) {
			r.input = inputs[out.Index]
		}

		switch {
		case out.OK():
			r.status = "ok"
			r.detail = format(out.Value)
		case out.Attempts == 0:
			r.status = "skipped"
			r.detail = firstLine(out.Err.Error())
		default:
			r.status = "failed"
			r.detail = firstLine(out.Err.Error())
		}
		rows[i] = r
	}
	return rows
}

func statusCell(status string) string {
	switch status {
	case "ok":
		return green.Sprint(status)
	case "skipped":
		return yellow.Sprint(status)
	default:
		return red.Sprint(status)
	}
}

// renderResults prints the results table in submission order.
func renderResults(w io.Writer, rows []row) {
	table := tablewriter.NewWriter(w)
	table.Header("#", "Input", "Status", "Attempts", "Elapsed", "Result")

	for i, r := range rows {
		_ = table.Append(
			strconv.Itoa(i),
			r.input,
			statusCell(r.status),
			strconv.Itoa(r.attempts),
			r.elapsed.Round(time.Millisecond).String(),
			truncate(r.detail, 60),
		)
	}

	_ = table.Render()
}

// renderStats prints the run summary.
func renderStats(w io.Writer, stats queue.RunStats) {
	fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "Summary")
	fmt.Fprintf(w, "  total:     %d\n", stats.Total)
	_, _ = green.Fprintf(w, "  succeeded: %d\n", stats.Succeeded)
	_, _ = red.Fprintf(w, "  failed:    %d\n", stats.Failed)
	if stats.Skipped > 0 {
		_, _ = yellow.Fprintf(w, "  skipped:   %d\n", stats.Skipped)
	}
	fmt.Fprintf(w, "  attempts:  %d (%d retries)\n", stats.Attempts, stats.Retries())
	fmt.Fprintf(w, "  peak:      %d in flight\n", stats.PeakConcurrency)
	fmt.Fprintf(w, "  elapsed:   %s\n", stats.Elapsed.Round(time.Millisecond))
}

// firstLine drops everything after the first newline, e.g. panic stack traces.
func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
