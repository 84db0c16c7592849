package stbridge

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ValidationOutcome is the result of checking one attribute value.
// Suggestions carries the allowed values when an enumeration rejected
// the value.
type ValidationOutcome struct {
	Valid       bool
	Error       string
	Suggestions []string
}

// TypeCatalog resolves named simple types while validating. The XSD
// backend supplies one; the JSON backend's definitions are already flat
// and a nil catalog is fine.
type TypeCatalog interface {
	SimpleType(name string) (*SimpleTypeDefinition, bool)
}

func valid() ValidationOutcome {
	return ValidationOutcome{Valid: true}
}

func invalid(format string, args ...any) ValidationOutcome {
	return ValidationOutcome{Error: fmt.Sprintf(format, args...)}
}

// ValidateAttribute evaluates value against def. Rules run in a fixed
// order and the first applicable rule decides the outcome:
// empty-value, fixed, enumeration, numeric, boolean, pattern, minLength.
func ValidateAttribute(value string, def *AttributeDefinition, catalog TypeCatalog) ValidationOutcome {
	if value == "" {
		if def.Required {
			return invalid("required attribute '%s' is empty", def.Name)
		}
		return valid()
	}

	if def.HasFixed {
		if value != def.Fixed {
			return invalid("attribute '%s' must be fixed value '%s', got '%s'", def.Name, def.Fixed, value)
		}
		return valid()
	}

	constraints, baseType, union := resolveEffectiveType(def.DeclaredType, def.Constraints, catalog)

	if len(union) > 0 {
		for _, member := range union {
			if memberAccepts(value, member, catalog, 0) {
				return valid()
			}
		}
		return invalid("value '%s' is not valid against any member type of '%s'", value, def.DeclaredType)
	}

	return checkValue(value, def.Name, constraints, baseType)
}

// checkValue runs the ordered constraint rules shared by direct and
// union-member validation.
func checkValue(value, attrName string, c *Constraints, baseType TypeRef) ValidationOutcome {
	if len(c.Enumerations) > 0 {
		for _, allowed := range c.Enumerations {
			if value == allowed {
				return valid()
			}
		}
		return ValidationOutcome{
			Error:       fmt.Sprintf("value '%s' for attribute '%s' is not in the allowed set", value, attrName),
			Suggestions: append([]string(nil), c.Enumerations...),
		}
	}

	if isNumericType(baseType) {
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return invalid("value '%s' for attribute '%s' is not a number", value, attrName)
		}
		if isIntegerType(baseType) && f != float64(int64(f)) {
			return invalid("value '%s' for attribute '%s' is not an integer", value, attrName)
		}
		if out := checkNumericFacets(f, value, attrName, c); !out.Valid {
			return out
		}
		return valid()
	}

	if isBooleanType(baseType) {
		if !booleanTokens[value] {
			return invalid("value '%s' for attribute '%s' is not a boolean", value, attrName)
		}
		return valid()
	}

	if len(c.Patterns) > 0 {
		if !matchesAnyPattern(value, c.Patterns) {
			return invalid("value '%s' for attribute '%s' does not match the required pattern", value, attrName)
		}
	}

	if c.MinLength > 0 && len([]rune(value)) < c.MinLength {
		return invalid("value for attribute '%s' must be at least %d characters", attrName, c.MinLength)
	}

	return valid()
}

func checkNumericFacets(f float64, value, attrName string, c *Constraints) ValidationOutcome {
	if c.MinExclusive != nil && f <= *c.MinExclusive {
		return invalid("value %s for attribute '%s' must be greater than %g", value, attrName, *c.MinExclusive)
	}
	if c.MinInclusive != nil && f < *c.MinInclusive {
		return invalid("value %s for attribute '%s' must be at least %g", value, attrName, *c.MinInclusive)
	}
	if c.MaxExclusive != nil && f >= *c.MaxExclusive {
		return invalid("value %s for attribute '%s' must be less than %g", value, attrName, *c.MaxExclusive)
	}
	if c.MaxInclusive != nil && f > *c.MaxInclusive {
		return invalid("value %s for attribute '%s' must be at most %g", value, attrName, *c.MaxInclusive)
	}
	return valid()
}

// matchesAnyPattern anchors each pattern at both ends. A pattern that
// does not compile counts as matched: an unparsable pattern must never
// block data.
func matchesAnyPattern(value string, patterns []string) bool {
	for _, p := range patterns {
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return true
		}
		if re.MatchString(value) {
			return true
		}
	}
	return false
}

// resolveEffectiveType follows the declared type through named simple
// types, merging constraints first-writer-wins, until it reaches a
// builtin or a union. The chain walk is bounded like the type resolver.
func resolveEffectiveType(declared TypeRef, own *Constraints, catalog TypeCatalog) (*Constraints, TypeRef, []TypeRef) {
	c := &Constraints{}
	c.merge(own)

	t := declared
	for depth := 0; depth < maxResolveDepth && t != "" && catalog != nil; depth++ {
		st, ok := catalog.SimpleType(string(t))
		if !ok {
			break
		}
		if len(st.UnionMembers) > 0 {
			return c, t, st.UnionMembers
		}
		c.merge(&st.Constraints)
		if st.Base == t {
			break
		}
		t = st.Base
	}

	c.merge(builtinConstraints[t])
	return c, t, nil
}

// memberAccepts reports whether a union member type accepts the value.
func memberAccepts(value string, member TypeRef, catalog TypeCatalog, depth int) bool {
	if depth >= maxResolveDepth {
		return false
	}
	c, base, union := resolveEffectiveType(member, nil, catalog)
	if len(union) > 0 {
		for _, m := range union {
			if memberAccepts(value, m, catalog, depth+1) {
				return true
			}
		}
		return false
	}
	return checkValue(value, string(member), c, base).Valid
}
