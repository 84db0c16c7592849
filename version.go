package stbridge

// SchemaVersion identifies one ST-Bridge schema release. All registry
// lookups are keyed by version first; nothing is shared across versions.
type SchemaVersion string

const (
	// Version202 is ST-Bridge 2.0.2.
	Version202 SchemaVersion = "2.0.2"
	// Version210 is ST-Bridge 2.1.0.
	Version210 SchemaVersion = "2.1.0"
)

var knownVersions = []SchemaVersion{Version202, Version210}

// KnownVersions lists the schema versions this engine ships sources for.
func KnownVersions() []SchemaVersion {
	out := make([]SchemaVersion, len(knownVersions))
	copy(out, knownVersions)
	return out
}

// ParseVersion maps a document's version attribute to a known
// SchemaVersion. Patch-less forms ("2.0", "2.1") map to the shipped
// patch release.
func ParseVersion(s string) (SchemaVersion, bool) {
	switch s {
	case "2.0.2", "2.0", "2.0.0", "2.0.1":
		return Version202, true
	case "2.1.0", "2.1":
		return Version210, true
	}
	return "", false
}
