package stbridge

// TypeRef names a schema type: either a builtin ("string", "double",
// "positiveInteger") or a type declared by the schema source.
type TypeRef string

// Constraints is the conjunctive constraint set for one attribute or
// simple type. A value satisfies the set iff it satisfies every present
// field; a fixed value on the owning attribute short-circuits all of it.
type Constraints struct {
	Enumerations []string
	Patterns     []string
	MinExclusive *float64
	MaxExclusive *float64
	MinInclusive *float64
	MaxInclusive *float64
	MinLength    int // 0 means unset
}

// Empty reports whether no constraint field is set.
func (c *Constraints) Empty() bool {
	return c == nil ||
		(len(c.Enumerations) == 0 && len(c.Patterns) == 0 &&
			c.MinExclusive == nil && c.MaxExclusive == nil &&
			c.MinInclusive == nil && c.MaxInclusive == nil &&
			c.MinLength == 0)
}

// merge copies constraint fields from other into c for every field not
// already set. First writer wins, matching attribute resolution.
func (c *Constraints) merge(other *Constraints) {
	if other == nil {
		return
	}
	if len(c.Enumerations) == 0 {
		c.Enumerations = other.Enumerations
	}
	if len(c.Patterns) == 0 {
		c.Patterns = other.Patterns
	}
	if c.MinExclusive == nil {
		c.MinExclusive = other.MinExclusive
	}
	if c.MaxExclusive == nil {
		c.MaxExclusive = other.MaxExclusive
	}
	if c.MinInclusive == nil {
		c.MinInclusive = other.MinInclusive
	}
	if c.MaxInclusive == nil {
		c.MaxInclusive = other.MaxInclusive
	}
	if c.MinLength == 0 {
		c.MinLength = other.MinLength
	}
}

// AttributeDefinition is the resolved declaration of one attribute.
type AttributeDefinition struct {
	Name          string
	DeclaredType  TypeRef
	Required      bool
	Default       string
	HasDefault    bool
	Fixed         string
	HasFixed      bool
	Constraints   *Constraints
	Documentation string
}

// ChildDefinition is the resolved declaration of one child element.
// Children sharing a nonzero ChoiceGroup id are mutually alternative;
// cardinality for a choice group is a unit property of the group and is
// deliberately not enforced per-child.
type ChildDefinition struct {
	Name        string
	TypeRef     TypeRef
	MinOccurs   int
	MaxOccurs   int // -1 for unbounded
	ChoiceGroup int // 0 means not part of a choice
	IsLeaf      bool
}

// SimpleTypeDefinition is a named simple type from the XSD backend.
// A union type accepts a value iff any member type accepts it.
type SimpleTypeDefinition struct {
	Name         string
	Base         TypeRef
	Constraints  Constraints
	UnionMembers []TypeRef
}

// ElementDefinition is the fully resolved, queryable shape of one
// element type. Immutable once built; owned by the registry for its
// version.
type ElementDefinition struct {
	Name          string
	Attributes    *AttributeMap
	Children      *ChildMap
	Documentation string
}

// AttributeMap is an insertion-ordered map of attribute definitions.
// Resolution order matters: the first writer for a name wins, which is
// how own declarations shadow inherited ones.
type AttributeMap struct {
	names  []string
	byName map[string]*AttributeDefinition
}

// NewAttributeMap returns an empty ordered attribute map.
func NewAttributeMap() *AttributeMap {
	return &AttributeMap{byName: make(map[string]*AttributeDefinition)}
}

// Add inserts def unless an attribute of the same name exists already.
// Reports whether the definition was added.
func (m *AttributeMap) Add(def *AttributeDefinition) bool {
	if _, ok := m.byName[def.Name]; ok {
		return false
	}
	m.names = append(m.names, def.Name)
	m.byName[def.Name] = def
	return true
}

// Get returns the definition for name.
func (m *AttributeMap) Get(name string) (*AttributeDefinition, bool) {
	def, ok := m.byName[name]
	return def, ok
}

// Names returns attribute names in insertion order.
func (m *AttributeMap) Names() []string {
	return m.names
}

// Len returns the number of attributes.
func (m *AttributeMap) Len() int {
	return len(m.names)
}

// ChildMap is an insertion-ordered map of child definitions.
type ChildMap struct {
	names  []string
	byName map[string]*ChildDefinition
}

// NewChildMap returns an empty ordered child map.
func NewChildMap() *ChildMap {
	return &ChildMap{byName: make(map[string]*ChildDefinition)}
}

// Add inserts def unless a child of the same name exists already.
func (m *ChildMap) Add(def *ChildDefinition) bool {
	if _, ok := m.byName[def.Name]; ok {
		return false
	}
	m.names = append(m.names, def.Name)
	m.byName[def.Name] = def
	return true
}

// Get returns the definition for name.
func (m *ChildMap) Get(name string) (*ChildDefinition, bool) {
	def, ok := m.byName[name]
	return def, ok
}

// Names returns child names in insertion order.
func (m *ChildMap) Names() []string {
	return m.names
}

// Len returns the number of children.
func (m *ChildMap) Len() int {
	return len(m.names)
}
