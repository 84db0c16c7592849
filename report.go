package stbridge

import (
	"fmt"
	"sort"
	"strings"
)

// Render formats the report as deterministic plain text: header,
// statistics, per-element counts, then issues grouped by severity.
func (r *ValidationReport) Render() string {
	var b strings.Builder

	b.WriteString("ST-Bridge Validation Report\n")
	b.WriteString("===========================\n")
	fmt.Fprintf(&b, "Generated: %s\n", r.Timestamp.Format("2006-01-02 15:04:05 UTC"))
	if r.SchemaVersion != "" {
		fmt.Fprintf(&b, "Schema version: %s\n", r.SchemaVersion)
	}
	if r.Valid {
		b.WriteString("Result: VALID\n")
	} else {
		b.WriteString("Result: INVALID\n")
	}

	b.WriteString("\nStatistics\n")
	b.WriteString("----------\n")
	fmt.Fprintf(&b, "Total issues:  %d\n", r.Statistics.Total)
	fmt.Fprintf(&b, "Errors:        %d\n", r.Statistics.BySeverity[SeverityError])
	fmt.Fprintf(&b, "Warnings:      %d\n", r.Statistics.BySeverity[SeverityWarning])
	fmt.Fprintf(&b, "Info:          %d\n", r.Statistics.BySeverity[SeverityInfo])
	fmt.Fprintf(&b, "Repairable:    %d\n", r.Statistics.RepairableCount)

	if len(r.Statistics.ByElement) > 0 {
		b.WriteString("\nIssues by element\n")
		b.WriteString("-----------------\n")
		names := make([]string, 0, len(r.Statistics.ByElement))
		for name := range r.Statistics.ByElement {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "%-20s %d\n", name, r.Statistics.ByElement[name])
		}
	}

	for _, severity := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		if r.Statistics.BySeverity[severity] == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n", strings.ToUpper(string(severity)))
		b.WriteString(strings.Repeat("-", len(severity)) + "\n")
		for _, issue := range r.Issues {
			if issue.Severity != severity {
				continue
			}
			fmt.Fprintf(&b, "[%s] %s\n", issue.Category, issue.Message)
			ref := issue.ElementType
			if issue.ElementID != "" {
				ref = fmt.Sprintf("%s[@id='%s']", issue.ElementType, issue.ElementID)
			}
			fmt.Fprintf(&b, "  element:  %s\n", ref)
			fmt.Fprintf(&b, "  location: %s\n", issue.IDXPath)
			if issue.RepairSuggestion != "" {
				fmt.Fprintf(&b, "  repair:   %s\n", issue.RepairSuggestion)
			}
		}
	}

	return b.String()
}
