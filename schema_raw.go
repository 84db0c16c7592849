package stbridge

// Raw schema tables shared by the two source backends. The XSD backend
// fills these from an XML schema document and leaves flattening to the
// type resolver; the JSON backend produces resolved definitions directly
// (its format is already flat).

type groupKind string

const (
	sequenceGroup groupKind = "sequence"
	choiceGroup   groupKind = "choice"
	allGroup      groupKind = "all"
)

// rawParticle is one entry in a content model: an element reference, a
// nested model group, or a named-group reference.
type rawParticle interface {
	isParticle()
}

type rawElementRef struct {
	Name string
	Type string // empty when the element declares its type elsewhere
	Min  int
	Max  int // -1 for unbounded
}

type rawGroupRef struct {
	Ref string
	Min int
	Max int
}

type rawModelGroup struct {
	Kind      groupKind
	Min       int
	Max       int
	Particles []rawParticle
}

func (rawElementRef) isParticle() {}
func (rawGroupRef) isParticle()   {}
func (rawModelGroup) isParticle() {}

// rawElement is a global element declaration.
type rawElement struct {
	Name          string
	Type          string
	Inline        *rawComplexType // anonymous type declared inside the element
	Documentation string
}

// rawComplexType is an unresolved complex type: own attributes, group
// references, a content model, and an optional extension base.
type rawComplexType struct {
	Name          string
	Base          string
	Attributes    []*AttributeDefinition
	AttrGroupRefs []string
	Particles     []rawParticle
	Documentation string
}

// rawAttributeGroup is a named set of attribute declarations, possibly
// referencing further attribute groups.
type rawAttributeGroup struct {
	Name       string
	Attributes []*AttributeDefinition
	GroupRefs  []string
}

// rawSchema is everything one backend extracted from a schema source.
type rawSchema struct {
	elements     map[string]*rawElement
	elementOrder []string
	complexTypes map[string]*rawComplexType
	simpleTypes  map[string]*SimpleTypeDefinition
	attrGroups   map[string]*rawAttributeGroup
	groups       map[string]*rawModelGroup
}

func newRawSchema() *rawSchema {
	return &rawSchema{
		elements:     make(map[string]*rawElement),
		complexTypes: make(map[string]*rawComplexType),
		simpleTypes:  make(map[string]*SimpleTypeDefinition),
		attrGroups:   make(map[string]*rawAttributeGroup),
		groups:       make(map[string]*rawModelGroup),
	}
}

func (s *rawSchema) addElement(el *rawElement) {
	if _, ok := s.elements[el.Name]; ok {
		return
	}
	s.elements[el.Name] = el
	s.elementOrder = append(s.elementOrder, el.Name)
}
