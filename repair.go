package stbridge

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RepairOptions controls which strategies the engine may apply.
type RepairOptions struct {
	// UseDefaults writes deterministic default values (missing or
	// invalid coordinate -> 0, missing name -> generated placeholder).
	UseDefaults bool
	// RemoveInvalid deletes elements whose repair suggestion implies
	// removal (duplicates, dangling references, zero-length members).
	RemoveInvalid bool
	// SkipCategories lists categories the engine must not touch.
	SkipCategories []Category
}

// RepairAction records what the engine did for one issue.
type RepairAction struct {
	Kind        string `json:"kind"` // "set-default" or "remove"
	ElementType string `json:"elementType"`
	ElementID   string `json:"elementId,omitempty"`
	Attribute   string `json:"attribute,omitempty"`
	Value       string `json:"value,omitempty"`
	Success     bool   `json:"success"`
	Reason      string `json:"reason,omitempty"`
}

// RepairReport summarizes one repair pass.
type RepairReport struct {
	TotalRepairs    int            `json:"totalRepairs"`
	SuccessCount    int            `json:"successCount"`
	FailureCount    int            `json:"failureCount"`
	RemovedElements []string       `json:"removedElements"`
	Actions         []RepairAction `json:"actions"`
}

// RepairEngine turns validation issues into document mutations. It
// works on a fresh clone; the validated original is never touched.
type RepairEngine struct {
	log *zap.Logger
}

// NewRepairEngine returns an engine. A nil logger disables logging.
func NewRepairEngine(log *zap.Logger) *RepairEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &RepairEngine{log: log}
}

// Repair processes the report's repairable issues in order against a
// clone of root and returns the clone with the repair report. Deletions
// are deferred to the end of the pass so earlier repairs never
// invalidate the element another issue refers to.
func (e *RepairEngine) Repair(root *Node, report *ValidationReport, opts RepairOptions) (*Node, *RepairReport) {
	clone := root.Clone()
	out := &RepairReport{RemovedElements: []string{}, Actions: []RepairAction{}}

	skipped := make(map[Category]bool, len(opts.SkipCategories))
	for _, c := range opts.SkipCategories {
		skipped[c] = true
	}

	marked := make(map[*Node]bool)
	var removals []*Node

	for _, issue := range report.Issues {
		if !issue.Repairable || skipped[issue.Category] {
			continue
		}
		out.TotalRepairs++

		action := RepairAction{
			ElementType: issue.ElementType,
			ElementID:   issue.ElementID,
			Attribute:   issue.Attribute,
		}

		if value, ok := defaultValueFor(issue); ok && opts.UseDefaults {
			target := e.locate(clone, issue, marked, false)
			if target == nil {
				action.Success = false
				action.Reason = "element not found in document"
				out.FailureCount++
				out.Actions = append(out.Actions, action)
				continue
			}
			target.SetAttr(issue.Attribute, value)
			action.Kind = "set-default"
			action.Value = value
			action.Success = true
			out.SuccessCount++
			out.Actions = append(out.Actions, action)
			e.log.Debug("repair applied default",
				zap.String("element", target.Ref()),
				zap.String("attribute", issue.Attribute),
				zap.String("value", value))
			continue
		}

		if opts.RemoveInvalid && impliesRemoval(issue) {
			// Duplicate issues must keep the first occurrence, so they
			// consume matches from the back.
			target := e.locate(clone, issue, marked, issue.Category == CategoryDuplicate)
			if target == nil || target.Parent == nil {
				action.Success = false
				action.Reason = "element not found in document"
				out.FailureCount++
				out.Actions = append(out.Actions, action)
				continue
			}
			marked[target] = true
			removals = append(removals, target)
			action.Kind = "remove"
			action.Success = true
			out.SuccessCount++
			out.RemovedElements = append(out.RemovedElements, target.Ref())
			out.Actions = append(out.Actions, action)
			e.log.Debug("repair scheduled removal", zap.String("element", target.Ref()))
			continue
		}

		action.Success = false
		action.Reason = "no applicable repair strategy"
		out.FailureCount++
		out.Actions = append(out.Actions, action)
	}

	for _, n := range removals {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}

	return clone, out
}

// defaultValueFor computes the deterministic default for an issue, when
// one exists.
func defaultValueFor(issue ValidationIssue) (string, bool) {
	switch issue.Attribute {
	case "X", "Y", "Z":
		if issue.Category == CategoryData {
			return "0", true
		}
	case "name":
		return "generated-" + uuid.NewString()[:8], true
	}
	return "", false
}

func impliesRemoval(issue ValidationIssue) bool {
	return strings.HasPrefix(issue.RepairSuggestion, "Remove")
}

// locate finds the issue's element in the clone: all unmarked nodes
// matching element type, id and, for attribute repairs, the attribute
// value the issue recorded. The value match keeps same-id duplicates
// apart: a default for one occurrence's missing attribute never lands
// on another occurrence that already carries a value. fromBack selects
// the last match instead of the first.
func (e *RepairEngine) locate(root *Node, issue ValidationIssue, marked map[*Node]bool, fromBack bool) *Node {
	elementPath := strings.TrimSuffix(issue.XPath, "/@"+issue.Attribute)

	var matches []*Node
	root.Walk(func(n *Node) {
		if marked[n] || n.Tag != issue.ElementType {
			return
		}
		if issue.Attribute != "" && n.AttrValue(issue.Attribute) != issue.Value {
			return
		}
		if issue.ElementID != "" {
			if n.ID() == issue.ElementID {
				matches = append(matches, n)
			}
			return
		}
		if absolutePath(n) == elementPath {
			matches = append(matches, n)
		}
	})

	if len(matches) == 0 {
		return nil
	}
	if fromBack {
		return matches[len(matches)-1]
	}
	return matches[0]
}

// Render formats the repair report as plain text.
func (r *RepairReport) Render() string {
	var b strings.Builder
	b.WriteString("ST-Bridge Repair Report\n")
	b.WriteString("=======================\n")
	fmt.Fprintf(&b, "Total repairs attempted: %d\n", r.TotalRepairs)
	fmt.Fprintf(&b, "Succeeded:               %d\n", r.SuccessCount)
	fmt.Fprintf(&b, "Failed:                  %d\n", r.FailureCount)
	if len(r.RemovedElements) > 0 {
		b.WriteString("\nRemoved elements:\n")
		for _, ref := range r.RemovedElements {
			fmt.Fprintf(&b, "  - %s\n", ref)
		}
	}
	return b.String()
}
