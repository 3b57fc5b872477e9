package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Nomadcxx/mediasort/internal/organizer"
)

// WriteCheckReport prints the collisions, unresolved files and existing
// destinations found by a check sweep
func WriteCheckReport(w io.Writer, report *organizer.CheckReport) error {
	h := headingStyle(w)
	var sb strings.Builder

	sb.WriteString(h.Render("CHECK REPORT") + "\n")
	fmt.Fprintf(&sb, "Root:        %s\n", report.Root)
	fmt.Fprintf(&sb, "Files seen:  %d\n", report.Scanned)
	fmt.Fprintf(&sb, "Planned:     %d destinations\n", len(report.Planned))
	fmt.Fprintf(&sb, "Collisions:  %d\n", len(report.Collisions))
	fmt.Fprintf(&sb, "Not found:   %d\n", len(report.Unresolved))
	fmt.Fprintf(&sb, "Existing:    %d\n", len(report.Existing))
	fmt.Fprintf(&sb, "Failed:      %d\n", len(report.Failed))

	if len(report.Collisions) > 0 {
		sb.WriteString("\n" + h.Render("COLLISIONS") + "\n")
		rows := make([][]string, 0, len(report.Collisions))
		for i, c := range report.Collisions {
			rows = append(rows, []string{fmt.Sprintf("%d", i+1), c.Destination, strings.Join(c.Sources, "\n")})
		}
		sb.WriteString(renderTable([]string{"#", "Destination", "Sources"}, rows, []text.Align{text.AlignRight}))
		sb.WriteString("\n")
	} else {
		sb.WriteString("\nNo collisions found.\n")
	}

	if len(report.Unresolved) > 0 {
		sb.WriteString("\n" + h.Render("NOT FOUND") + "\n")
		for _, path := range report.Unresolved {
			sb.WriteString("  " + path + "\n")
		}
	}

	if len(report.Existing) > 0 {
		sb.WriteString("\n" + h.Render("ALREADY IN LIBRARY") + "\n")
		rows := make([][]string, 0, len(report.Existing))
		for _, r := range report.Existing {
			rows = append(rows, []string{r.Destination, r.Source})
		}
		sb.WriteString(renderTable([]string{"Destination", "Source"}, rows, nil))
		sb.WriteString("\n")
	}

	if len(report.Failed) > 0 {
		sb.WriteString("\n" + h.Render("FAILED") + "\n")
		for _, f := range report.Failed {
			fmt.Fprintf(&sb, "  %s: %v\n", f.Source, f.Err)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func renderTable(headers []string, rows [][]string, aligns []text.Align) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
