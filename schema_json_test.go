package stbridge

import (
	"strings"
	"testing"
)

func TestParseJSONSource(t *testing.T) {
	rs, err := parseJSONSource([]byte(testJSONSchema))
	if err != nil {
		t.Fatalf("parseJSONSource: %v", err)
	}

	// Definitions come out sorted by name.
	want := []string{"StbColumn", "StbNode", "StbNodes"}
	if len(rs.elementOrder) != len(want) {
		t.Fatalf("elementOrder = %v", rs.elementOrder)
	}
	for i, name := range want {
		if rs.elementOrder[i] != name {
			t.Errorf("elementOrder[%d] = %q, want %q", i, rs.elementOrder[i], name)
		}
	}

	node, ok := rs.element("StbNode")
	if !ok {
		t.Fatal("StbNode not resolved")
	}
	if node.Documentation != "A model node." {
		t.Errorf("documentation = %q", node.Documentation)
	}
	id, ok := node.Attributes.Get("id")
	if !ok || !id.Required {
		t.Error("id must be present and required")
	}

	column, _ := rs.element("StbColumn")
	ks, ok := column.Attributes.Get("kind_structure")
	if !ok {
		t.Fatal("kind_structure missing")
	}
	if ks.Constraints == nil || len(ks.Constraints.Enumerations) != 4 {
		t.Errorf("enum constraint lost: %+v", ks.Constraints)
	}

	nodes, _ := rs.element("StbNodes")
	child, ok := nodes.Children.Get("StbNode")
	if !ok {
		t.Fatal("StbNode child missing")
	}
	if child.MinOccurs != 0 || child.MaxOccurs != -1 {
		t.Errorf("occurs = (%d,%d), want (0,-1)", child.MinOccurs, child.MaxOccurs)
	}
	if !child.IsLeaf {
		t.Error("leaf flag lost")
	}
}

func TestParseJSONConstAndBounds(t *testing.T) {
	const src = `{
	  "definitions": {
	    "Header": {
	      "attributes": {
	        "version": {"type": "string", "const": "2.1.0"},
	        "rate": {"type": "double", "minimum": 0, "maximum": 100},
	        "offset": {"type": "double", "exclusiveMinimum": 0}
	      }
	    }
	  }
	}`

	rs, err := parseJSONSource([]byte(src))
	if err != nil {
		t.Fatalf("parseJSONSource: %v", err)
	}
	header, _ := rs.element("Header")

	version, _ := header.Attributes.Get("version")
	if !version.HasFixed || version.Fixed != "2.1.0" {
		t.Errorf("const must map to a fixed value, got (%v, %q)", version.HasFixed, version.Fixed)
	}

	rate, _ := header.Attributes.Get("rate")
	if rate.Constraints == nil || rate.Constraints.MinInclusive == nil || *rate.Constraints.MinInclusive != 0 {
		t.Errorf("minimum lost: %+v", rate.Constraints)
	}
	if rate.Constraints.MaxInclusive == nil || *rate.Constraints.MaxInclusive != 100 {
		t.Errorf("maximum lost: %+v", rate.Constraints)
	}

	offset, _ := header.Attributes.Get("offset")
	if offset.Constraints == nil || offset.Constraints.MinExclusive == nil {
		t.Errorf("exclusiveMinimum lost: %+v", offset.Constraints)
	}
}

func TestParseJSONChoiceLabels(t *testing.T) {
	const src = `{
	  "definitions": {
	    "StbSecColumn": {
	      "children": {
	        "SecA": {"choice": "figure", "leaf": true},
	        "SecB": {"choice": "figure", "leaf": true},
	        "SecC": {"choice": "bars", "leaf": true},
	        "SecD": {"leaf": true}
	      }
	    },
	    "StbSecBeam": {
	      "children": {
	        "SecE": {"choice": "figure", "leaf": true}
	      }
	    }
	  }
	}`

	rs, err := parseJSONSource([]byte(src))
	if err != nil {
		t.Fatalf("parseJSONSource: %v", err)
	}

	column, _ := rs.element("StbSecColumn")
	a, _ := column.Children.Get("SecA")
	b, _ := column.Children.Get("SecB")
	c, _ := column.Children.Get("SecC")
	d, _ := column.Children.Get("SecD")

	if a.ChoiceGroup == 0 || a.ChoiceGroup != b.ChoiceGroup {
		t.Errorf("same label must share one group id: %d vs %d", a.ChoiceGroup, b.ChoiceGroup)
	}
	if c.ChoiceGroup == a.ChoiceGroup {
		t.Error("different labels must not share a group id")
	}
	if d.ChoiceGroup != 0 {
		t.Error("unlabeled child must carry group id 0")
	}

	beam, _ := rs.element("StbSecBeam")
	e, _ := beam.Children.Get("SecE")
	if e.ChoiceGroup == a.ChoiceGroup {
		t.Error("choice labels are scoped per element, ids must not cross elements")
	}
}

func TestParseJSONRejectsBadSources(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"truncated", `{"definitions": {`},
		{"no definitions", `{"version": "2.1.0"}`},
		{"empty definitions", `{"definitions": {}}`},
		{"bad occurs", `{"definitions": {"A": {"children": {"B": {"maxOccurs": "many"}}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseJSONSource([]byte(tt.src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseSourceDispatch(t *testing.T) {
	if _, err := parseSource([]byte("   \n" + testJSONSchema)); err != nil {
		t.Errorf("leading whitespace must not break JSON detection: %v", err)
	}
	if _, err := parseSource([]byte(testXSD)); err != nil {
		t.Errorf("XSD dispatch failed: %v", err)
	}
	if _, err := parseSource([]byte("   ")); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("blank source must be rejected, got %v", err)
	}
}
