package stbridge

import "time"

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Category classifies what kind of check produced an issue.
type Category string

const (
	CategoryStructure Category = "structure"
	CategoryReference Category = "reference"
	CategoryData      Category = "data"
	CategoryGeometry  Category = "geometry"
	CategoryDuplicate Category = "duplicate"
	CategorySchema    Category = "schema"
)

// ValidationIssue is one detected problem. Issues are data, never
// control flow: the validator records them and keeps going. Field names
// are stable for serialization across a process boundary.
type ValidationIssue struct {
	Severity         Severity `json:"severity"`
	Category         Category `json:"category"`
	Message          string   `json:"message"`
	ElementType      string   `json:"elementType"`
	ElementID        string   `json:"elementId,omitempty"`
	Attribute        string   `json:"attribute,omitempty"`
	Value            string   `json:"value,omitempty"`
	Expected         string   `json:"expected,omitempty"`
	XPath            string   `json:"xpath"`
	IDXPath          string   `json:"idXPath"`
	Repairable       bool     `json:"repairable"`
	RepairSuggestion string   `json:"repairSuggestion,omitempty"`
}

// Statistics aggregates a report's issue counts.
type Statistics struct {
	Total           int              `json:"total"`
	BySeverity      map[Severity]int `json:"bySeverity"`
	ByCategory      map[Category]int `json:"byCategory"`
	ByElement       map[string]int   `json:"byElement"`
	RepairableCount int              `json:"repairableCount"`
}

// ValidationReport is the outcome of one validation run. Valid is true
// iff no issue in the (possibly info-filtered) list is an Error.
type ValidationReport struct {
	Valid         bool              `json:"valid"`
	SchemaVersion SchemaVersion     `json:"schemaVersion,omitempty"`
	Issues        []ValidationIssue `json:"issues"`
	Statistics    Statistics        `json:"statistics"`
	Timestamp     time.Time         `json:"timestamp"`
}

// ErrorCount returns the number of Error-severity issues.
func (r *ValidationReport) ErrorCount() int {
	return r.Statistics.BySeverity[SeverityError]
}

func computeStatistics(issues []ValidationIssue) Statistics {
	stats := Statistics{
		Total:      len(issues),
		BySeverity: make(map[Severity]int),
		ByCategory: make(map[Category]int),
		ByElement:  make(map[string]int),
	}
	for _, issue := range issues {
		stats.BySeverity[issue.Severity]++
		stats.ByCategory[issue.Category]++
		if issue.ElementType != "" {
			stats.ByElement[issue.ElementType]++
		}
		if issue.Repairable {
			stats.RepairableCount++
		}
	}
	return stats
}
