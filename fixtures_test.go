package stbridge

import (
	"strings"
	"testing"
)

// Shared schema and document fixtures. The XSD and JSON sources below
// describe the same element shapes so backend-equivalence can be tested.

const testXSD = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:stb="https://www.building-smart.or.jp/dl"
           targetNamespace="https://www.building-smart.or.jp/dl">

  <xs:simpleType name="kindStructure">
    <xs:restriction base="xs:string">
      <xs:enumeration value="S"/>
      <xs:enumeration value="RC"/>
      <xs:enumeration value="SRC"/>
      <xs:enumeration value="CFT"/>
    </xs:restriction>
  </xs:simpleType>

  <xs:simpleType name="autoKeyword">
    <xs:restriction base="xs:string">
      <xs:enumeration value="AUTO"/>
    </xs:restriction>
  </xs:simpleType>

  <xs:simpleType name="positiveOrAuto">
    <xs:union memberTypes="xs:positiveInteger stb:autoKeyword"/>
  </xs:simpleType>

  <xs:attributeGroup name="memberCommon">
    <xs:attribute name="id" type="xs:positiveInteger" use="required"/>
    <xs:attribute name="name" type="xs:string"/>
    <xs:attribute name="id_section" type="xs:positiveInteger" use="required"/>
    <xs:attribute name="kind_structure" type="stb:kindStructure" use="required"/>
  </xs:attributeGroup>

  <xs:element name="StbNode">
    <xs:annotation><xs:documentation>A model node.</xs:documentation></xs:annotation>
    <xs:complexType>
      <xs:attribute name="id" type="xs:positiveInteger" use="required"/>
      <xs:attribute name="X" type="xs:double" use="required"/>
      <xs:attribute name="Y" type="xs:double" use="required"/>
      <xs:attribute name="Z" type="xs:double" use="required"/>
    </xs:complexType>
  </xs:element>

  <xs:element name="StbColumn">
    <xs:complexType>
      <xs:attributeGroup ref="stb:memberCommon"/>
      <xs:attribute name="id_node_bottom" type="xs:positiveInteger" use="required"/>
      <xs:attribute name="id_node_top" type="xs:positiveInteger" use="required"/>
    </xs:complexType>
  </xs:element>

  <xs:element name="StbBeam">
    <xs:complexType>
      <xs:attributeGroup ref="stb:memberCommon"/>
      <xs:attribute name="id_node_start" type="xs:positiveInteger" use="required"/>
      <xs:attribute name="id_node_end" type="xs:positiveInteger" use="required"/>
      <xs:attribute name="haunch_start" type="stb:positiveOrAuto"/>
    </xs:complexType>
  </xs:element>

  <xs:element name="StbNodes">
    <xs:complexType>
      <xs:sequence>
        <xs:element ref="stb:StbNode" minOccurs="0" maxOccurs="unbounded"/>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>`

const testJSONSchema = `{
  "version": "2.1.0",
  "definitions": {
    "StbNode": {
      "description": "A model node.",
      "attributes": {
        "id": {"type": "positiveInteger", "required": true},
        "X": {"type": "double", "required": true},
        "Y": {"type": "double", "required": true},
        "Z": {"type": "double", "required": true}
      }
    },
    "StbNodes": {
      "children": {
        "StbNode": {"minOccurs": 0, "maxOccurs": "unbounded", "leaf": true}
      }
    },
    "StbColumn": {
      "attributes": {
        "id": {"type": "positiveInteger", "required": true},
        "name": {"type": "string"},
        "id_section": {"type": "positiveInteger", "required": true},
        "kind_structure": {"type": "string", "required": true, "enum": ["S", "RC", "SRC", "CFT"]},
        "id_node_bottom": {"type": "positiveInteger", "required": true},
        "id_node_top": {"type": "positiveInteger", "required": true}
      }
    }
  }
}`

// validDocument is a minimal well-formed model: two nodes, one column,
// one beam, matching sections.
const validDocument = `<?xml version="1.0" encoding="UTF-8"?>
<ST_BRIDGE xmlns="https://www.building-smart.or.jp/dl" version="2.0.2">
  <StbCommon/>
  <StbModel>
    <StbNodes>
      <StbNode id="1" X="0" Y="0" Z="0"/>
      <StbNode id="2" X="0" Y="0" Z="3000"/>
      <StbNode id="3" X="6000" Y="0" Z="3000"/>
    </StbNodes>
    <StbMembers>
      <StbColumns>
        <StbColumn id="10" name="C1" id_node_bottom="1" id_node_top="2" id_section="100" kind_structure="RC"/>
      </StbColumns>
      <StbGirders>
        <StbGirder id="20" name="G1" id_node_start="2" id_node_end="3" id_section="200" kind_structure="S"/>
      </StbGirders>
    </StbMembers>
    <StbSections>
      <StbSecColumn_RC id="100" name="RC1"/>
      <StbSecBeam_S id="200" name="S1"/>
    </StbSections>
  </StbModel>
</ST_BRIDGE>`

func parseTestDocument(t *testing.T, xml string) *Node {
	t.Helper()
	doc, err := ParseDocument(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("failed to parse test document: %v", err)
	}
	return doc
}
