package stbridge

import "strings"

// ST-Bridge domain tables: member endpoint attributes, the section tags
// each member kind may reference, and id namespaces. Kept as data so the
// reference layer stays a plain table walk.

// memberSpec describes one structural member tag.
type memberSpec struct {
	StartAttr string // empty for planar members
	EndAttr   string
	Sections  []string // allowed section tags for id_section
}

var memberSpecs = map[string]memberSpec{
	"StbColumn": {
		StartAttr: "id_node_bottom",
		EndAttr:   "id_node_top",
		Sections:  []string{"StbSecColumn_S", "StbSecColumn_RC", "StbSecColumn_SRC", "StbSecColumn_CFT"},
	},
	"StbPost": {
		StartAttr: "id_node_bottom",
		EndAttr:   "id_node_top",
		Sections:  []string{"StbSecColumn_S", "StbSecColumn_RC", "StbSecColumn_SRC", "StbSecColumn_CFT"},
	},
	"StbGirder": {
		StartAttr: "id_node_start",
		EndAttr:   "id_node_end",
		Sections:  []string{"StbSecBeam_S", "StbSecBeam_RC", "StbSecBeam_SRC"},
	},
	"StbBeam": {
		StartAttr: "id_node_start",
		EndAttr:   "id_node_end",
		Sections:  []string{"StbSecBeam_S", "StbSecBeam_RC", "StbSecBeam_SRC"},
	},
	"StbBrace": {
		StartAttr: "id_node_start",
		EndAttr:   "id_node_end",
		Sections:  []string{"StbSecBrace_S"},
	},
	"StbSlab": {
		Sections: []string{"StbSecSlab_RC"},
	},
	"StbWall": {
		Sections: []string{"StbSecWall_RC"},
	},
}

var sectionTags = map[string]bool{
	"StbSecColumn_S":   true,
	"StbSecColumn_RC":  true,
	"StbSecColumn_SRC": true,
	"StbSecColumn_CFT": true,
	"StbSecBeam_S":     true,
	"StbSecBeam_RC":    true,
	"StbSecBeam_SRC":   true,
	"StbSecBrace_S":    true,
	"StbSecSlab_RC":    true,
	"StbSecWall_RC":    true,
}

// sectionMaterial returns the material suffix of a section tag:
// StbSecColumn_RC -> "RC". Empty for non-section tags.
func sectionMaterial(tag string) string {
	if !sectionTags[tag] {
		return ""
	}
	if i := strings.LastIndexByte(tag, '_'); i >= 0 {
		return tag[i+1:]
	}
	return ""
}

// Id namespaces. Ids are unique per kind, not globally: a node and a
// column may both be "1".
const (
	kindNode    = "node"
	kindStory   = "story"
	kindAxis    = "axis"
	kindMember  = "member"
	kindSection = "section"
)

// idKind maps a tag to its id namespace, or "" for tags whose ids are
// not tracked.
func idKind(tag string) string {
	switch tag {
	case "StbNode":
		return kindNode
	case "StbStory":
		return kindStory
	case "StbX_Axis", "StbY_Axis", "StbParallelAxis":
		return kindAxis
	}
	if _, ok := memberSpecs[tag]; ok {
		return kindMember
	}
	if sectionTags[tag] {
		return kindSection
	}
	return ""
}

// Geometry plausibility thresholds, in millimeters.
const (
	zeroLengthTolerance = 1e-6
	minPlausibleLength  = 10.0
	maxPlausibleLength  = 120000.0
)
