package stbridge

import "testing"

// mapCatalog is a TypeCatalog backed by a plain map.
type mapCatalog map[string]*SimpleTypeDefinition

func (m mapCatalog) SimpleType(name string) (*SimpleTypeDefinition, bool) {
	st, ok := m[name]
	return st, ok
}

func testCatalog() mapCatalog {
	return mapCatalog{
		"kindStructure": {
			Name:        "kindStructure",
			Base:        "string",
			Constraints: Constraints{Enumerations: []string{"S", "RC", "SRC", "CFT"}},
		},
		"autoKeyword": {
			Name:        "autoKeyword",
			Base:        "string",
			Constraints: Constraints{Enumerations: []string{"AUTO"}},
		},
		"positiveOrAuto": {
			Name:         "positiveOrAuto",
			UnionMembers: []TypeRef{"positiveInteger", "autoKeyword"},
		},
	}
}

func TestValidateAttribute(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name  string
		value string
		def   *AttributeDefinition
		valid bool
	}{
		{"empty optional", "", &AttributeDefinition{Name: "name"}, true},
		{"empty required", "", &AttributeDefinition{Name: "id", Required: true}, false},
		{"fixed match", "2.0.2", &AttributeDefinition{Name: "version", Fixed: "2.0.2", HasFixed: true}, true},
		{"fixed mismatch", "2.1.0", &AttributeDefinition{Name: "version", Fixed: "2.0.2", HasFixed: true}, false},
		{"integer ok", "42", &AttributeDefinition{Name: "id", DeclaredType: "positiveInteger"}, true},
		{"integer not a number", "abc", &AttributeDefinition{Name: "id", DeclaredType: "positiveInteger"}, false},
		{"integer fractional", "1.5", &AttributeDefinition{Name: "id", DeclaredType: "integer"}, false},
		{"positiveInteger zero", "0", &AttributeDefinition{Name: "id", DeclaredType: "positiveInteger"}, false},
		{"double ok", "-12.75", &AttributeDefinition{Name: "X", DeclaredType: "double"}, true},
		{"double whitespace", " 3.5 ", &AttributeDefinition{Name: "X", DeclaredType: "double"}, true},
		{"boolean true", "true", &AttributeDefinition{Name: "isFoundation", DeclaredType: "boolean"}, true},
		{"boolean numeric", "1", &AttributeDefinition{Name: "isFoundation", DeclaredType: "boolean"}, true},
		{"boolean junk", "yes", &AttributeDefinition{Name: "isFoundation", DeclaredType: "boolean"}, false},
		{"enum via named type", "RC", &AttributeDefinition{Name: "kind_structure", DeclaredType: "kindStructure"}, true},
		{"enum rejected", "WOOD", &AttributeDefinition{Name: "kind_structure", DeclaredType: "kindStructure"}, false},
		{"union integer member", "5", &AttributeDefinition{Name: "haunch_start", DeclaredType: "positiveOrAuto"}, true},
		{"union keyword member", "AUTO", &AttributeDefinition{Name: "haunch_start", DeclaredType: "positiveOrAuto"}, true},
		{"union negative rejected", "-3", &AttributeDefinition{Name: "haunch_start", DeclaredType: "positiveOrAuto"}, false},
		{"union junk rejected", "x", &AttributeDefinition{Name: "haunch_start", DeclaredType: "positiveOrAuto"}, false},
		{"pattern match", "FL1", &AttributeDefinition{Name: "floor", DeclaredType: "string",
			Constraints: &Constraints{Patterns: []string{`FL[0-9]+`}}}, true},
		{"pattern partial not enough", "XFL1X", &AttributeDefinition{Name: "floor", DeclaredType: "string",
			Constraints: &Constraints{Patterns: []string{`FL[0-9]+`}}}, false},
		{"broken pattern fails open", "anything", &AttributeDefinition{Name: "floor", DeclaredType: "string",
			Constraints: &Constraints{Patterns: []string{`FL[0-9`}}}, true},
		{"minLength too short", "ab", &AttributeDefinition{Name: "guid", DeclaredType: "string",
			Constraints: &Constraints{MinLength: 3}}, false},
		{"minLength rune counted", "あいう", &AttributeDefinition{Name: "guid", DeclaredType: "string",
			Constraints: &Constraints{MinLength: 3}}, true},
		{"inclusive max", "100", &AttributeDefinition{Name: "rate", DeclaredType: "double",
			Constraints: &Constraints{MaxInclusive: &hundred}}, true},
		{"inclusive max exceeded", "100.1", &AttributeDefinition{Name: "rate", DeclaredType: "double",
			Constraints: &Constraints{MaxInclusive: &hundred}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ValidateAttribute(tt.value, tt.def, catalog)
			if out.Valid != tt.valid {
				t.Errorf("ValidateAttribute(%q) valid = %v, want %v (error: %s)", tt.value, out.Valid, tt.valid, out.Error)
			}
		})
	}
}

var hundred = 100.0

func TestEnumerationFailureCarriesSuggestions(t *testing.T) {
	def := &AttributeDefinition{Name: "kind_structure", DeclaredType: "kindStructure"}
	out := ValidateAttribute("WOOD", def, testCatalog())
	if out.Valid {
		t.Fatal("WOOD should be rejected")
	}
	if len(out.Suggestions) != 4 {
		t.Fatalf("suggestions = %v, want the four allowed values", out.Suggestions)
	}
	if out.Suggestions[0] != "S" || out.Suggestions[3] != "CFT" {
		t.Errorf("suggestions out of order: %v", out.Suggestions)
	}
}

func TestTypeFailureCarriesNoSuggestions(t *testing.T) {
	def := &AttributeDefinition{Name: "id", DeclaredType: "positiveInteger"}
	out := ValidateAttribute("abc", def, testCatalog())
	if out.Valid {
		t.Fatal("abc should be rejected")
	}
	if len(out.Suggestions) != 0 {
		t.Errorf("type failures must not suggest values, got %v", out.Suggestions)
	}
}

func TestFixedShortCircuitsOtherRules(t *testing.T) {
	// Fixed wins even when the value would fail the declared type.
	def := &AttributeDefinition{
		Name:         "version",
		DeclaredType: "positiveInteger",
		Fixed:        "not-a-number",
		HasFixed:     true,
	}
	if out := ValidateAttribute("not-a-number", def, nil); !out.Valid {
		t.Errorf("fixed match must short-circuit type checks: %s", out.Error)
	}
}

func TestDerivedSimpleTypeInheritsBaseFacets(t *testing.T) {
	catalog := mapCatalog{
		"bounded": {
			Name:        "bounded",
			Base:        "positiveInteger",
			Constraints: Constraints{MaxInclusive: &hundred},
		},
	}
	def := &AttributeDefinition{Name: "count", DeclaredType: "bounded"}

	if out := ValidateAttribute("50", def, catalog); !out.Valid {
		t.Errorf("50 should pass: %s", out.Error)
	}
	if out := ValidateAttribute("0", def, catalog); out.Valid {
		t.Error("0 violates the positiveInteger base and should fail")
	}
	if out := ValidateAttribute("101", def, catalog); out.Valid {
		t.Error("101 violates the derived maximum and should fail")
	}
}

func TestNilCatalogValidatesBuiltins(t *testing.T) {
	def := &AttributeDefinition{Name: "Z", DeclaredType: "double"}
	if out := ValidateAttribute("3000", def, nil); !out.Valid {
		t.Errorf("builtin check must not need a catalog: %s", out.Error)
	}
}
