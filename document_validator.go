package stbridge

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ValidatorOptions controls one validation run.
type ValidatorOptions struct {
	// SchemaVersion selects the schema for the schema-attribute layer.
	// Empty means the registry's active version; when no version is
	// loaded the layer is silently skipped and the structural layers
	// still run.
	SchemaVersion SchemaVersion
	// IncludeInfo keeps Info-severity issues in the report.
	IncludeInfo bool
	// SkipGeometry disables the geometry layer.
	SkipGeometry bool
}

// DocumentValidator runs the layered checks over a document tree. It is
// stateless between calls: repeated validation of the same tree yields
// an identical report, and concurrent calls on different trees are safe.
type DocumentValidator struct {
	registry *SchemaRegistry
}

// NewDocumentValidator returns a validator backed by the given registry.
// A nil registry skips the schema-attribute layer.
func NewDocumentValidator(registry *SchemaRegistry) *DocumentValidator {
	return &DocumentValidator{registry: registry}
}

// Validate runs all layers in fixed order (schema attributes, structure,
// identity, references, geometry) and returns the report. The document
// is never mutated.
func (v *DocumentValidator) Validate(root *Node, opts ValidatorOptions) *ValidationReport {
	run := &validationRun{
		ids: make(map[string]map[string]*Node),
	}

	version := opts.SchemaVersion
	if version == "" && v.registry != nil {
		version = v.registry.ActiveVersion()
	}

	if v.registry != nil && v.registry.HasVersion(version) {
		v.validateSchemaLayer(run, root, version)
	} else {
		version = ""
	}

	v.validateStructure(run, root)
	v.validateIdentity(run, root)
	v.validateReferences(run, root)
	if !opts.SkipGeometry {
		v.validateGeometry(run, root)
	}

	issues := run.issues
	if !opts.IncludeInfo {
		filtered := make([]ValidationIssue, 0, len(issues))
		for _, issue := range issues {
			if issue.Severity != SeverityInfo {
				filtered = append(filtered, issue)
			}
		}
		issues = filtered
	}
	if issues == nil {
		issues = []ValidationIssue{}
	}

	stats := computeStatistics(issues)
	return &ValidationReport{
		Valid:         stats.BySeverity[SeverityError] == 0,
		SchemaVersion: version,
		Issues:        issues,
		Statistics:    stats,
		Timestamp:     time.Now().UTC(),
	}
}

type validationRun struct {
	issues []ValidationIssue
	// ids maps id namespace -> id -> first element carrying it.
	ids map[string]map[string]*Node
}

func (run *validationRun) add(issue ValidationIssue) {
	run.issues = append(run.issues, issue)
}

func (run *validationRun) record(kind, id string, n *Node) bool {
	byID, ok := run.ids[kind]
	if !ok {
		byID = make(map[string]*Node)
		run.ids[kind] = byID
	}
	if _, exists := byID[id]; exists {
		return false
	}
	byID[id] = n
	return true
}

func (run *validationRun) lookup(kind, id string) (*Node, bool) {
	n, ok := run.ids[kind][id]
	return n, ok
}

func issueAt(n *Node, severity Severity, category Category, message string) ValidationIssue {
	return ValidationIssue{
		Severity:    severity,
		Category:    category,
		Message:     message,
		ElementType: n.Tag,
		ElementID:   n.ID(),
		XPath:       absolutePath(n),
		IDXPath:     idAnchoredPath(n),
	}
}

// --- layer 1: schema attributes ---

// validateSchemaLayer checks every element with a resolvable definition:
// required attributes present, declared values valid, no undeclared
// attributes, required non-choice children present. Choice-group
// cardinality is not checked. Schema conformance fixes are
// content-specific, so nothing here is repairable.
func (v *DocumentValidator) validateSchemaLayer(run *validationRun, root *Node, version SchemaVersion) {
	catalog := v.registry.Catalog(version)

	root.Walk(func(n *Node) {
		def, ok := v.registry.ElementDefinition(version, n.Tag)
		if !ok {
			return
		}

		for _, name := range def.Attributes.Names() {
			attrDef, _ := def.Attributes.Get(name)
			if !attrDef.Required {
				continue
			}
			if _, present := n.Attr(name); !present {
				issue := issueAt(n, SeverityError, CategorySchema,
					fmt.Sprintf("required attribute '%s' is missing on <%s>", name, n.Tag))
				issue.Attribute = name
				issue.XPath = attributePath(issue.XPath, name)
				issue.IDXPath = attributePath(issue.IDXPath, name)
				run.add(issue)
			}
		}

		for _, attr := range n.Attrs {
			attrDef, declared := def.Attributes.Get(attr.Name)
			if !declared {
				issue := issueAt(n, SeverityError, CategorySchema,
					fmt.Sprintf("attribute '%s' is not declared on <%s>", attr.Name, n.Tag))
				issue.Attribute = attr.Name
				issue.Value = attr.Value
				issue.XPath = attributePath(issue.XPath, attr.Name)
				issue.IDXPath = attributePath(issue.IDXPath, attr.Name)
				run.add(issue)
				continue
			}

			outcome := ValidateAttribute(attr.Value, attrDef, catalog)
			if outcome.Valid {
				continue
			}
			issue := issueAt(n, SeverityError, CategorySchema, outcome.Error)
			issue.Attribute = attr.Name
			issue.Value = attr.Value
			issue.Expected = strings.Join(outcome.Suggestions, ", ")
			issue.XPath = attributePath(issue.XPath, attr.Name)
			issue.IDXPath = attributePath(issue.IDXPath, attr.Name)
			run.add(issue)
		}

		for _, name := range def.Children.Names() {
			childDef, _ := def.Children.Get(name)
			if childDef.ChoiceGroup != 0 || childDef.MinOccurs < 1 {
				continue
			}
			if n.FirstChild(name) == nil {
				run.add(issueAt(n, SeverityError, CategorySchema,
					fmt.Sprintf("required child <%s> is missing from <%s>", name, n.Tag)))
			}
		}
	})
}

// --- layer 2: structure ---

func (v *DocumentValidator) validateStructure(run *validationRun, root *Node) {
	if root.Tag != "ST_BRIDGE" {
		run.add(issueAt(root, SeverityError, CategoryStructure,
			fmt.Sprintf("root element must be ST_BRIDGE, found <%s>", root.Tag)))
		return
	}
	if _, ok := root.Attr("version"); !ok {
		issue := issueAt(root, SeverityError, CategoryStructure,
			"root element carries no version attribute")
		issue.Attribute = "version"
		run.add(issue)
	}

	if root.FirstChild("StbCommon") == nil {
		run.add(issueAt(root, SeverityWarning, CategoryStructure,
			"document has no StbCommon element"))
	}

	model := root.FirstChild("StbModel")
	if model == nil {
		run.add(issueAt(root, SeverityError, CategoryStructure,
			"document has no StbModel element"))
		return
	}

	nodes := model.FirstChild("StbNodes")
	if nodes == nil {
		run.add(issueAt(model, SeverityError, CategoryStructure,
			"StbModel has no StbNodes container"))
	} else if len(nodes.ChildrenByTag("StbNode")) == 0 {
		run.add(issueAt(nodes, SeverityError, CategoryStructure,
			"StbNodes contains no StbNode elements"))
	}

	if members := model.FirstChild("StbMembers"); members != nil {
		if model.FirstChild("StbSections") == nil {
			run.add(issueAt(members, SeverityWarning, CategoryStructure,
				"model declares members but no StbSections container"))
		}
	}
}

// --- layer 3: identity ---

// validateIdentity builds the per-kind id maps in one pass. The first
// occurrence of a duplicated id is not flagged; every later one is.
func (v *DocumentValidator) validateIdentity(run *validationRun, root *Node) {
	root.Walk(func(n *Node) {
		kind := idKind(n.Tag)
		if kind == "" {
			return
		}

		id := n.ID()
		if id == "" {
			run.add(issueAt(n, SeverityError, CategoryStructure,
				fmt.Sprintf("<%s> carries no id attribute", n.Tag)))
			return
		}

		if !run.record(kind, id, n) {
			issue := issueAt(n, SeverityError, CategoryDuplicate,
				fmt.Sprintf("duplicate %s id '%s'", kind, id))
			issue.Repairable = true
			issue.RepairSuggestion = fmt.Sprintf("Remove duplicate <%s> with id '%s'", n.Tag, id)
			run.add(issue)
		}

		if kind == kindMember || kind == kindStory {
			if name := n.AttrValue("name"); name == "" {
				issue := issueAt(n, SeverityInfo, CategoryData,
					fmt.Sprintf("<%s> id '%s' has no name", n.Tag, id))
				issue.Attribute = "name"
				issue.Repairable = true
				issue.RepairSuggestion = "Assign a generated name"
				run.add(issue)
			}
		}
	})
}

// --- layer 4: references ---

func (v *DocumentValidator) validateReferences(run *validationRun, root *Node) {
	root.Walk(func(n *Node) {
		spec, isMember := memberSpecs[n.Tag]
		if !isMember {
			return
		}

		if spec.StartAttr != "" {
			v.checkNodeRef(run, n, spec.StartAttr)
			v.checkNodeRef(run, n, spec.EndAttr)
		}

		for _, order := range n.ChildrenByTag("StbNodeIdOrder") {
			for _, id := range strings.Fields(order.Text) {
				if _, ok := run.lookup(kindNode, id); !ok {
					issue := issueAt(order, SeverityError, CategoryReference,
						fmt.Sprintf("<%s> id '%s' references unknown node '%s'", n.Tag, n.ID(), id))
					issue.Value = id
					issue.Repairable = true
					issue.RepairSuggestion = "Remove element or reassign the node reference"
					run.add(issue)
				}
			}
		}

		secID, ok := n.Attr("id_section")
		if !ok || secID == "" {
			return
		}
		section, found := run.lookup(kindSection, secID)
		if !found {
			issue := issueAt(n, SeverityError, CategoryReference,
				fmt.Sprintf("<%s> id '%s' references unknown section '%s'", n.Tag, n.ID(), secID))
			issue.Attribute = "id_section"
			issue.Value = secID
			issue.Repairable = true
			issue.RepairSuggestion = "Remove element or reassign the section reference"
			run.add(issue)
			return
		}

		if !containsString(spec.Sections, section.Tag) {
			issue := issueAt(n, SeverityError, CategoryReference,
				fmt.Sprintf("<%s> id '%s' references section <%s>, which is not a valid section kind for it", n.Tag, n.ID(), section.Tag))
			issue.Attribute = "id_section"
			issue.Value = secID
			issue.Expected = strings.Join(spec.Sections, ", ")
			run.add(issue)
			return
		}

		if ks := n.AttrValue("kind_structure"); ks != "" {
			if material := sectionMaterial(section.Tag); material != "" && material != ks {
				issue := issueAt(n, SeverityError, CategoryReference,
					fmt.Sprintf("<%s> id '%s' declares kind_structure '%s' but its section <%s> is %s", n.Tag, n.ID(), ks, section.Tag, material))
				issue.Attribute = "kind_structure"
				issue.Value = ks
				issue.Expected = material
				run.add(issue)
			}
		}
	})
}

func (v *DocumentValidator) checkNodeRef(run *validationRun, n *Node, attr string) {
	id, ok := n.Attr(attr)
	if !ok || id == "" {
		return
	}
	if _, exists := run.lookup(kindNode, id); !exists {
		issue := issueAt(n, SeverityError, CategoryReference,
			fmt.Sprintf("<%s> id '%s' references unknown node '%s' via %s", n.Tag, n.ID(), id, attr))
		issue.Attribute = attr
		issue.Value = id
		issue.Repairable = true
		issue.RepairSuggestion = "Remove element or reassign the node reference"
		run.add(issue)
	}
}

// --- layer 5: geometry ---

// validateGeometry checks node coordinates and member span lengths.
// Span problems are warnings: implausible geometry alone never makes a
// document invalid.
func (v *DocumentValidator) validateGeometry(run *validationRun, root *Node) {
	coords := make(map[*Node][3]float64)

	root.Walk(func(n *Node) {
		if n.Tag != "StbNode" {
			return
		}
		var xyz [3]float64
		ok := true
		for i, attr := range [3]string{"X", "Y", "Z"} {
			value, present := n.Attr(attr)
			if !present {
				issue := issueAt(n, SeverityError, CategoryData,
					fmt.Sprintf("node '%s' has no %s coordinate", n.ID(), attr))
				issue.Attribute = attr
				issue.Repairable = true
				issue.RepairSuggestion = "Set missing coordinate to 0"
				run.add(issue)
				ok = false
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				issue := issueAt(n, SeverityError, CategoryData,
					fmt.Sprintf("node '%s' has invalid %s coordinate '%s'", n.ID(), attr, value))
				issue.Attribute = attr
				issue.Value = value
				issue.Repairable = true
				issue.RepairSuggestion = "Reset invalid coordinate to 0"
				run.add(issue)
				ok = false
				continue
			}
			xyz[i] = f
		}
		if ok {
			coords[n] = xyz
		}
	})

	root.Walk(func(n *Node) {
		spec, isMember := memberSpecs[n.Tag]
		if !isMember || spec.StartAttr == "" {
			return
		}

		start, okStart := run.lookup(kindNode, n.AttrValue(spec.StartAttr))
		end, okEnd := run.lookup(kindNode, n.AttrValue(spec.EndAttr))
		if !okStart || !okEnd {
			return
		}
		p1, ok1 := coords[start]
		p2, ok2 := coords[end]
		if !ok1 || !ok2 {
			return
		}

		length := math.Sqrt(sq(p2[0]-p1[0]) + sq(p2[1]-p1[1]) + sq(p2[2]-p1[2]))
		switch {
		case length < zeroLengthTolerance:
			issue := issueAt(n, SeverityWarning, CategoryGeometry,
				fmt.Sprintf("<%s> id '%s' has zero length: both ends resolve to the same point", n.Tag, n.ID()))
			issue.Repairable = true
			issue.RepairSuggestion = "Remove zero-length member"
			run.add(issue)
		case length < minPlausibleLength:
			run.add(issueAt(n, SeverityWarning, CategoryGeometry,
				fmt.Sprintf("<%s> id '%s' is implausibly short (%.3f mm)", n.Tag, n.ID(), length)))
		case length > maxPlausibleLength:
			run.add(issueAt(n, SeverityWarning, CategoryGeometry,
				fmt.Sprintf("<%s> id '%s' is implausibly long (%.0f mm)", n.Tag, n.ID(), length)))
		}
	})
}

func sq(v float64) float64 {
	return v * v
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
