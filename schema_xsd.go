package stbridge

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentflare-ai/go-xmldom"
)

// XSDNamespace is the XML Schema namespace.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// parseXSDSource parses an XML-schema-style source into raw tables.
// A structural parse failure returns an error and no partial tables.
func parseXSDSource(data []byte) (*rawSchema, error) {
	doc, err := xmldom.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XSD source: %w", err)
	}

	root := doc.DocumentElement()
	if root == nil {
		return nil, fmt.Errorf("XSD source has no root element")
	}
	if string(root.NamespaceURI()) != XSDNamespace || string(root.LocalName()) != "schema" {
		return nil, fmt.Errorf("not an XML schema document: root is %s", string(root.LocalName()))
	}

	s := newRawSchema()

	children := root.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "element":
			parseXSDElement(s, child)
		case "complexType":
			if ct := parseXSDComplexType(s, child); ct != nil && ct.Name != "" {
				s.complexTypes[ct.Name] = ct
			}
		case "simpleType":
			parseXSDSimpleType(s, child)
		case "attributeGroup":
			parseXSDAttributeGroup(s, child)
		case "group":
			parseXSDGroup(s, child)
		}
	}

	return s, nil
}

func parseXSDElement(s *rawSchema, elem xmldom.Element) {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return
	}

	el := &rawElement{
		Name:          name,
		Type:          stripPrefix(string(elem.GetAttribute("type"))),
		Documentation: xsdDocumentation(elem),
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		if string(child.LocalName()) == "complexType" {
			el.Inline = parseXSDComplexType(s, child)
		}
	}

	s.addElement(el)
}

func parseXSDComplexType(s *rawSchema, elem xmldom.Element) *rawComplexType {
	ct := &rawComplexType{
		Name:          string(elem.GetAttribute("name")),
		Documentation: xsdDocumentation(elem),
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "sequence", "choice", "all":
			ct.Particles = append(ct.Particles, parseXSDModelGroup(s, child))
		case "group":
			if ref := stripPrefix(string(child.GetAttribute("ref"))); ref != "" {
				ct.Particles = append(ct.Particles, rawGroupRef{
					Ref: ref,
					Min: parseOccurs(child, "minOccurs", 1),
					Max: parseOccurs(child, "maxOccurs", 1),
				})
			}
		case "attribute":
			if attr := parseXSDAttribute(s, child); attr != nil {
				ct.Attributes = append(ct.Attributes, attr)
			}
		case "attributeGroup":
			if ref := stripPrefix(string(child.GetAttribute("ref"))); ref != "" {
				ct.AttrGroupRefs = append(ct.AttrGroupRefs, ref)
			}
		case "complexContent":
			parseXSDComplexContent(s, child, ct)
		}
	}

	return ct
}

// parseXSDComplexContent handles extension: the base name is recorded and
// the extension's own attributes and content are merged into ct.
func parseXSDComplexContent(s *rawSchema, elem xmldom.Element, ct *rawComplexType) {
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		if name := string(child.LocalName()); name != "extension" && name != "restriction" {
			continue
		}
		ct.Base = stripPrefix(string(child.GetAttribute("base")))

		inner := child.Children()
		for j := uint(0); j < inner.Length(); j++ {
			c := inner.Item(j)
			if c == nil || string(c.NamespaceURI()) != XSDNamespace {
				continue
			}
			switch string(c.LocalName()) {
			case "sequence", "choice", "all":
				ct.Particles = append(ct.Particles, parseXSDModelGroup(s, c))
			case "group":
				if ref := stripPrefix(string(c.GetAttribute("ref"))); ref != "" {
					ct.Particles = append(ct.Particles, rawGroupRef{
						Ref: ref,
						Min: parseOccurs(c, "minOccurs", 1),
						Max: parseOccurs(c, "maxOccurs", 1),
					})
				}
			case "attribute":
				if attr := parseXSDAttribute(s, c); attr != nil {
					ct.Attributes = append(ct.Attributes, attr)
				}
			case "attributeGroup":
				if ref := stripPrefix(string(c.GetAttribute("ref"))); ref != "" {
					ct.AttrGroupRefs = append(ct.AttrGroupRefs, ref)
				}
			}
		}
	}
}

func parseXSDModelGroup(s *rawSchema, elem xmldom.Element) rawModelGroup {
	mg := rawModelGroup{
		Kind: groupKind(string(elem.LocalName())),
		Min:  parseOccurs(elem, "minOccurs", 1),
		Max:  parseOccurs(elem, "maxOccurs", 1),
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "element":
			name := string(child.GetAttribute("name"))
			if name == "" {
				name = stripPrefix(string(child.GetAttribute("ref")))
			}
			if name == "" {
				continue
			}
			mg.Particles = append(mg.Particles, rawElementRef{
				Name: name,
				Type: stripPrefix(string(child.GetAttribute("type"))),
				Min:  parseOccurs(child, "minOccurs", 1),
				Max:  parseOccurs(child, "maxOccurs", 1),
			})
			// Inline declarations inside a content model register their
			// anonymous type under the element name for leaf detection.
			parseXSDInlineChild(s, child, name)
		case "sequence", "choice", "all":
			mg.Particles = append(mg.Particles, parseXSDModelGroup(s, child))
		case "group":
			if ref := stripPrefix(string(child.GetAttribute("ref"))); ref != "" {
				mg.Particles = append(mg.Particles, rawGroupRef{
					Ref: ref,
					Min: parseOccurs(child, "minOccurs", 1),
					Max: parseOccurs(child, "maxOccurs", 1),
				})
			}
		}
	}

	return mg
}

func parseXSDInlineChild(s *rawSchema, elem xmldom.Element, name string) {
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		if string(child.LocalName()) == "complexType" {
			if _, exists := s.elements[name]; !exists {
				s.addElement(&rawElement{
					Name:          name,
					Inline:        parseXSDComplexType(s, child),
					Documentation: xsdDocumentation(elem),
				})
			}
		}
	}
}

func parseXSDAttribute(s *rawSchema, elem xmldom.Element) *AttributeDefinition {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return nil
	}

	attr := &AttributeDefinition{
		Name:          name,
		DeclaredType:  TypeRef(stripPrefix(string(elem.GetAttribute("type")))),
		Required:      string(elem.GetAttribute("use")) == "required",
		Documentation: xsdDocumentation(elem),
	}

	if def := string(elem.GetAttribute("default")); def != "" {
		attr.Default = def
		attr.HasDefault = true
	}
	if fixed := string(elem.GetAttribute("fixed")); fixed != "" {
		attr.Fixed = fixed
		attr.HasFixed = true
	}

	// Inline simple type restriction becomes the attribute's own
	// constraint set.
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		if string(child.LocalName()) == "simpleType" {
			st := parseXSDSimpleTypeBody(child, "")
			if st != nil {
				if attr.DeclaredType == "" {
					attr.DeclaredType = st.Base
				}
				if !st.Constraints.Empty() {
					c := st.Constraints
					attr.Constraints = &c
				}
			}
		}
	}

	return attr
}

func parseXSDAttributeGroup(s *rawSchema, elem xmldom.Element) {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return
	}

	ag := &rawAttributeGroup{Name: name}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "attribute":
			if attr := parseXSDAttribute(s, child); attr != nil {
				ag.Attributes = append(ag.Attributes, attr)
			}
		case "attributeGroup":
			if ref := stripPrefix(string(child.GetAttribute("ref"))); ref != "" {
				ag.GroupRefs = append(ag.GroupRefs, ref)
			}
		}
	}

	s.attrGroups[name] = ag
}

func parseXSDGroup(s *rawSchema, elem xmldom.Element) {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "sequence", "choice", "all":
			mg := parseXSDModelGroup(s, child)
			s.groups[name] = &mg
			return
		}
	}
}

func parseXSDSimpleType(s *rawSchema, elem xmldom.Element) {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return
	}
	if st := parseXSDSimpleTypeBody(elem, name); st != nil {
		s.simpleTypes[name] = st
	}
}

func parseXSDSimpleTypeBody(elem xmldom.Element, name string) *SimpleTypeDefinition {
	st := &SimpleTypeDefinition{Name: name}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "restriction":
			st.Base = TypeRef(stripPrefix(string(child.GetAttribute("base"))))
			parseXSDFacets(child, &st.Constraints)
		case "union":
			if members := string(child.GetAttribute("memberTypes")); members != "" {
				for _, m := range strings.Fields(members) {
					st.UnionMembers = append(st.UnionMembers, TypeRef(stripPrefix(m)))
				}
			}
		}
	}

	return st
}

func parseXSDFacets(elem xmldom.Element, c *Constraints) {
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		value := string(child.GetAttribute("value"))
		switch string(child.LocalName()) {
		case "enumeration":
			c.Enumerations = append(c.Enumerations, value)
		case "pattern":
			c.Patterns = append(c.Patterns, value)
		case "minExclusive":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				c.MinExclusive = &f
			}
		case "maxExclusive":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				c.MaxExclusive = &f
			}
		case "minInclusive":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				c.MinInclusive = &f
			}
		case "maxInclusive":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				c.MaxInclusive = &f
			}
		case "minLength":
			if n, err := strconv.Atoi(value); err == nil {
				c.MinLength = n
			}
		}
	}
}

// xsdDocumentation extracts xs:annotation/xs:documentation text.
func xsdDocumentation(elem xmldom.Element) string {
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		if string(child.LocalName()) != "annotation" {
			continue
		}
		inner := child.Children()
		for j := uint(0); j < inner.Length(); j++ {
			c := inner.Item(j)
			if c == nil || string(c.NamespaceURI()) != XSDNamespace {
				continue
			}
			if string(c.LocalName()) == "documentation" {
				return strings.TrimSpace(string(c.TextContent()))
			}
		}
	}
	return ""
}

// parseOccurs parses minOccurs/maxOccurs, "unbounded" mapping to -1.
func parseOccurs(elem xmldom.Element, attr string, defaultValue int) int {
	value := string(elem.GetAttribute(xmldom.DOMString(attr)))
	if value == "" {
		return defaultValue
	}
	if value == "unbounded" {
		return -1
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return defaultValue
}

// stripPrefix drops a namespace prefix from a type or ref name. The
// ST-Bridge schema is single-namespace, so the prefix carries no
// information once the source is parsed.
func stripPrefix(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
