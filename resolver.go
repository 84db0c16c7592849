package stbridge

// maxResolveDepth bounds recursive type expansion. A schema whose
// reference graph is deeper than this is either machine-generated beyond
// anything ST-Bridge ships or circular; resolution stops and keeps what
// it has gathered so far.
const maxResolveDepth = 32

// typeResolver flattens raw XSD tables into ElementDefinitions. Each
// top-level resolution carries its own visited set, so a type already
// expanded on the current path is skipped rather than recursed into.
// Merging is first-writer-wins: declarations found earlier (own scope)
// shadow those contributed later (inherited scope).
type typeResolver struct {
	raw        *rawSchema
	nextChoice int
}

func newTypeResolver(raw *rawSchema) *typeResolver {
	return &typeResolver{raw: raw}
}

// ResolveElement expands the named element into a flat attribute and
// child map. The second return is false when the schema declares no such
// element or type.
func (r *typeResolver) ResolveElement(name string) (*ElementDefinition, bool) {
	def := &ElementDefinition{
		Name:       name,
		Attributes: NewAttributeMap(),
		Children:   NewChildMap(),
	}
	visited := make(map[string]bool)

	if el, ok := r.raw.elements[name]; ok {
		def.Documentation = el.Documentation
		if el.Inline != nil {
			r.resolveComplex(el.Inline, def, visited, 0, 0)
			return def, true
		}
		if ct, ok := r.raw.complexTypes[el.Type]; ok {
			r.resolveComplex(ct, def, visited, 0, 0)
			return def, true
		}
		// Simple-typed or typeless element: no attributes, no children.
		return def, true
	}

	if ct, ok := r.raw.complexTypes[name]; ok {
		r.resolveComplex(ct, def, visited, 0, 0)
		return def, true
	}

	return nil, false
}

func (r *typeResolver) resolveComplex(ct *rawComplexType, def *ElementDefinition, visited map[string]bool, depth, choice int) {
	if depth >= maxResolveDepth {
		return
	}
	if ct.Name != "" {
		if visited[ct.Name] {
			return
		}
		visited[ct.Name] = true
	}

	if def.Documentation == "" {
		def.Documentation = ct.Documentation
	}

	for _, attr := range ct.Attributes {
		def.Attributes.Add(attr)
	}
	for _, ref := range ct.AttrGroupRefs {
		r.resolveAttrGroup(ref, def, visited, depth+1)
	}

	r.walkParticles(ct.Particles, def, visited, depth+1, choice)

	// Extension base contributes only names not already present.
	if ct.Base != "" {
		if base, ok := r.raw.complexTypes[ct.Base]; ok {
			r.resolveComplex(base, def, visited, depth+1, 0)
		}
	}
}

func (r *typeResolver) resolveAttrGroup(name string, def *ElementDefinition, visited map[string]bool, depth int) {
	if depth >= maxResolveDepth {
		return
	}
	key := "attrgroup:" + name
	if visited[key] {
		return
	}
	visited[key] = true

	ag, ok := r.raw.attrGroups[name]
	if !ok {
		return
	}
	for _, attr := range ag.Attributes {
		def.Attributes.Add(attr)
	}
	for _, ref := range ag.GroupRefs {
		r.resolveAttrGroup(ref, def, visited, depth+1)
	}
}

// walkParticles traverses sequence/choice/all containers uniformly for
// child discovery. A choice container allocates one fresh group id which
// propagates to everything nested under it, group references included,
// so sibling choices never merge into one alternative set.
func (r *typeResolver) walkParticles(particles []rawParticle, def *ElementDefinition, visited map[string]bool, depth, choice int) {
	if depth >= maxResolveDepth {
		return
	}
	for _, p := range particles {
		switch pt := p.(type) {
		case rawElementRef:
			r.addChild(def, pt, choice)
		case rawModelGroup:
			gid := choice
			if pt.Kind == choiceGroup {
				r.nextChoice++
				gid = r.nextChoice
			}
			r.walkParticles(pt.Particles, def, visited, depth+1, gid)
		case rawGroupRef:
			key := "group:" + pt.Ref
			if visited[key] {
				continue
			}
			visited[key] = true
			if grp, ok := r.raw.groups[pt.Ref]; ok {
				gid := choice
				if grp.Kind == choiceGroup {
					r.nextChoice++
					gid = r.nextChoice
				}
				r.walkParticles(grp.Particles, def, visited, depth+1, gid)
			}
			delete(visited, key)
		}
	}
}

func (r *typeResolver) addChild(def *ElementDefinition, ref rawElementRef, choice int) {
	typeName := ref.Type
	if typeName == "" {
		if el, ok := r.raw.elements[ref.Name]; ok {
			typeName = el.Type
		}
	}
	def.Children.Add(&ChildDefinition{
		Name:        ref.Name,
		TypeRef:     TypeRef(typeName),
		MinOccurs:   ref.Min,
		MaxOccurs:   ref.Max,
		ChoiceGroup: choice,
		IsLeaf:      r.isLeaf(ref.Name, typeName),
	})
}

// isLeaf reports whether the named child has no complex type of its own,
// directly or through its global declaration.
func (r *typeResolver) isLeaf(name, typeName string) bool {
	if typeName != "" {
		if _, ok := r.raw.complexTypes[typeName]; ok {
			return false
		}
	}
	if el, ok := r.raw.elements[name]; ok {
		if el.Inline != nil {
			return false
		}
		if _, ok := r.raw.complexTypes[el.Type]; ok {
			return false
		}
	}
	return true
}
