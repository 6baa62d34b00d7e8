package main

import (
	"strconv"

	"proctrack/internal/process"
)

func renderEntries(entries []process.Entry, fancy bool) string {
	headers := []string{"#", "Tracking", "Running", "Name", "Duration", "Notes", "Last seen", "Date added"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.ID),
			stateGlyph(e.IsTracked, fancy),
			stateGlyph(e.IsRunning, fancy),
			e.Name,
			process.FormatDuration(e.Duration),
			e.Notes,
			process.FormatDate(e.LastSeenDate),
			process.FormatDate(e.AddedDate),
		})
	}
	aligns := []columnAlignment{alignRight, alignCenter, alignCenter, alignLeft, alignRight, alignLeft, alignCenter, alignCenter}
	return renderTable(headers, rows, aligns, fancy)
}

func stateGlyph(on, fancy bool) string {
	switch {
	case fancy && on:
		return "●"
	case fancy:
		return "○"
	case on:
		return "yes"
	default:
		return "no"
	}
}
