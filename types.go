package stbridge

// Builtin type classification, reduced from the full XSD builtin set to
// the kinds the attribute validator distinguishes: integer-valued,
// numeric, boolean, everything else string-like.

var integerTypes = map[TypeRef]bool{
	"integer":            true,
	"int":                true,
	"long":               true,
	"short":              true,
	"byte":               true,
	"nonNegativeInteger": true,
	"nonPositiveInteger": true,
	"positiveInteger":    true,
	"negativeInteger":    true,
	"unsignedLong":       true,
	"unsignedInt":        true,
	"unsignedShort":      true,
	"unsignedByte":       true,
}

var numericTypes = map[TypeRef]bool{
	"number":  true,
	"decimal": true,
	"float":   true,
	"double":  true,
}

var booleanTypes = map[TypeRef]bool{
	"boolean": true,
	"bool":    true,
}

// booleanTokens is the canonical boolean value set. Both backends accept
// the XSD form, which includes the numeric tokens.
var booleanTokens = map[string]bool{
	"true":  true,
	"false": true,
	"1":     true,
	"0":     true,
}

func isIntegerType(t TypeRef) bool {
	return integerTypes[t]
}

func isNumericType(t TypeRef) bool {
	return integerTypes[t] || numericTypes[t]
}

func isBooleanType(t TypeRef) bool {
	return booleanTypes[t]
}

var (
	zero = 0.0
	one  = 1.0
)

// builtinConstraints carries the value-range facets implied by the
// bounded builtin integer types.
var builtinConstraints = map[TypeRef]*Constraints{
	"nonNegativeInteger": {MinInclusive: &zero},
	"positiveInteger":    {MinInclusive: &one},
	"nonPositiveInteger": {MaxInclusive: &zero},
	"negativeInteger":    {MaxExclusive: &zero},
	"unsignedLong":       {MinInclusive: &zero},
	"unsignedInt":        {MinInclusive: &zero},
	"unsignedShort":      {MinInclusive: &zero},
	"unsignedByte":       {MinInclusive: &zero},
}
