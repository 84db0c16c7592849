package stbridge

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// resolvedSchema is what the registry stores per version: every element
// definition materialized, plus the named simple types (XSD backend
// only; the JSON format has no simple-type indirection).
type resolvedSchema struct {
	elements     map[string]*ElementDefinition
	elementOrder []string
	simpleTypes  map[string]*SimpleTypeDefinition
}

func (s *resolvedSchema) element(name string) (*ElementDefinition, bool) {
	def, ok := s.elements[name]
	return def, ok
}

// SimpleType implements TypeCatalog.
func (s *resolvedSchema) SimpleType(name string) (*SimpleTypeDefinition, bool) {
	st, ok := s.simpleTypes[name]
	return st, ok
}

// jsonSchemaFile is the JSON-schema-style source format: a flat
// definitions object, one entry per element, already free of type
// references.
type jsonSchemaFile struct {
	Version     string                    `json:"version"`
	Definitions map[string]jsonDefinition `json:"definitions"`
}

type jsonDefinition struct {
	Description string                   `json:"description"`
	Attributes  map[string]jsonAttribute `json:"attributes"`
	Children    map[string]jsonChild     `json:"children"`
}

type jsonAttribute struct {
	Type             string   `json:"type"`
	Required         bool     `json:"required"`
	Default          *string  `json:"default"`
	Const            *string  `json:"const"`
	Enum             []string `json:"enum"`
	Pattern          string   `json:"pattern"`
	Minimum          *float64 `json:"minimum"`
	Maximum          *float64 `json:"maximum"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum"`
	MinLength        int      `json:"minLength"`
	Description      string   `json:"description"`
}

type jsonChild struct {
	Type      string      `json:"type"`
	MinOccurs *int        `json:"minOccurs"`
	MaxOccurs *jsonOccurs `json:"maxOccurs"`
	Choice    string      `json:"choice"`
	Leaf      bool        `json:"leaf"`
}

// jsonOccurs accepts either a number or the string "unbounded".
type jsonOccurs int

func (o *jsonOccurs) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "unbounded" {
			return fmt.Errorf("invalid occurs value %q", s)
		}
		*o = -1
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid occurs value: %w", err)
	}
	*o = jsonOccurs(n)
	return nil
}

// parseJSONSource parses a JSON-schema-style source into resolved
// element definitions. The raw document must compile as a JSON schema
// first; a document that does not is a malformed source and the caller
// leaves the registry untouched.
func parseJSONSource(data []byte) (*resolvedSchema, error) {
	if _, err := jsonschema.CompileString("schema.json", string(data)); err != nil {
		return nil, fmt.Errorf("schema source is not a valid JSON schema: %w", err)
	}

	var file jsonSchemaFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode schema definitions: %w", err)
	}
	if len(file.Definitions) == 0 {
		return nil, fmt.Errorf("schema source declares no definitions")
	}

	out := &resolvedSchema{
		elements:    make(map[string]*ElementDefinition, len(file.Definitions)),
		simpleTypes: make(map[string]*SimpleTypeDefinition),
	}

	// JSON object keys carry no order; sort for deterministic maps.
	names := make([]string, 0, len(file.Definitions))
	for name := range file.Definitions {
		names = append(names, name)
	}
	sort.Strings(names)

	choiceIDs := make(map[string]int)
	for _, name := range names {
		out.elements[name] = buildJSONDefinition(name, file.Definitions[name], choiceIDs)
		out.elementOrder = append(out.elementOrder, name)
	}

	return out, nil
}

func buildJSONDefinition(name string, jd jsonDefinition, choiceIDs map[string]int) *ElementDefinition {
	def := &ElementDefinition{
		Name:          name,
		Attributes:    NewAttributeMap(),
		Children:      NewChildMap(),
		Documentation: jd.Description,
	}

	attrNames := make([]string, 0, len(jd.Attributes))
	for n := range jd.Attributes {
		attrNames = append(attrNames, n)
	}
	sort.Strings(attrNames)
	for _, n := range attrNames {
		def.Attributes.Add(buildJSONAttribute(n, jd.Attributes[n]))
	}

	childNames := make([]string, 0, len(jd.Children))
	for n := range jd.Children {
		childNames = append(childNames, n)
	}
	sort.Strings(childNames)
	for _, n := range childNames {
		jc := jd.Children[n]
		child := &ChildDefinition{
			Name:      n,
			TypeRef:   TypeRef(jc.Type),
			MinOccurs: 1,
			MaxOccurs: 1,
			IsLeaf:    jc.Leaf,
		}
		if jc.MinOccurs != nil {
			child.MinOccurs = *jc.MinOccurs
		}
		if jc.MaxOccurs != nil {
			child.MaxOccurs = int(*jc.MaxOccurs)
		}
		if jc.Choice != "" {
			// Each distinct choice label within the file becomes one
			// group id, scoped to the owning element.
			key := name + "/" + jc.Choice
			id, ok := choiceIDs[key]
			if !ok {
				id = len(choiceIDs) + 1
				choiceIDs[key] = id
			}
			child.ChoiceGroup = id
		}
		def.Children.Add(child)
	}

	return def
}

func buildJSONAttribute(name string, ja jsonAttribute) *AttributeDefinition {
	attr := &AttributeDefinition{
		Name:          name,
		DeclaredType:  TypeRef(ja.Type),
		Required:      ja.Required,
		Documentation: ja.Description,
	}
	if ja.Default != nil {
		attr.Default = *ja.Default
		attr.HasDefault = true
	}
	if ja.Const != nil {
		attr.Fixed = *ja.Const
		attr.HasFixed = true
	}

	c := &Constraints{
		Enumerations: ja.Enum,
		MinInclusive: ja.Minimum,
		MaxInclusive: ja.Maximum,
		MinExclusive: ja.ExclusiveMinimum,
		MaxExclusive: ja.ExclusiveMaximum,
		MinLength:    ja.MinLength,
	}
	if ja.Pattern != "" {
		c.Patterns = []string{ja.Pattern}
	}
	if !c.Empty() {
		attr.Constraints = c
	}

	return attr
}
