package stbridge

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SchemaRegistry owns the per-version schema state: raw sources are
// fetched, parsed and fully materialized into ElementDefinitions at load
// time, then treated as immutable. Concurrent loads of the same version
// coalesce into one in-flight operation; a failed or cancelled load
// leaves the registry exactly as it was.
type SchemaRegistry struct {
	mu           sync.RWMutex
	versions     map[SchemaVersion]*resolvedSchema
	active       SchemaVersion
	fingerprints map[uint64]*resolvedSchema

	flight  singleflight.Group
	fetcher schemaFetcher
	log     *zap.Logger
}

// NewSchemaRegistry returns a registry using the given fetcher for
// schema sources. A nil logger disables logging.
func NewSchemaRegistry(fetcher schemaFetcher, log *zap.Logger) *SchemaRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &SchemaRegistry{
		versions:     make(map[SchemaVersion]*resolvedSchema),
		fingerprints: make(map[uint64]*resolvedSchema),
		fetcher:      fetcher,
		log:          log,
	}
}

// LoadSchema fetches, parses and materializes the schema for version.
// Idempotent: loading an already-loaded version is a no-op success.
func (r *SchemaRegistry) LoadSchema(ctx context.Context, version SchemaVersion) error {
	if r.HasVersion(version) {
		return nil
	}
	if r.fetcher == nil {
		return &SchemaLoadError{Version: version, Err: fmt.Errorf("registry has no schema source loader")}
	}

	// The shared load must not die with whichever caller happened to
	// initiate it, so it runs detached from that caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	ch := r.flight.DoChan(string(version), func() (any, error) {
		return nil, r.loadOnce(loadCtx, version)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		// The shared load keeps running for other callers; this caller
		// observes cancellation and, for it, nothing happened.
		return &SchemaLoadError{Version: version, Err: ctx.Err()}
	}
}

func (r *SchemaRegistry) loadOnce(ctx context.Context, version SchemaVersion) error {
	if r.HasVersion(version) {
		return nil
	}

	data, location, err := r.fetcher.Fetch(ctx, version)
	if err != nil {
		return &SchemaLoadError{Version: version, Err: err}
	}

	sum := xxhash.Sum64(data)

	r.mu.RLock()
	cached, hit := r.fingerprints[sum]
	r.mu.RUnlock()

	if hit {
		// Identical payload seen before; skip re-parsing.
		r.log.Debug("schema payload fingerprint hit",
			zap.String("version", string(version)),
			zap.Uint64("fingerprint", sum))
		r.store(version, sum, cached)
		return nil
	}

	rs, err := parseSource(data)
	if err != nil {
		r.log.Warn("schema source failed to parse",
			zap.String("version", string(version)),
			zap.String("location", location),
			zap.Error(err))
		return &SchemaLoadError{Version: version, Source: location, Err: err}
	}

	r.log.Info("schema loaded",
		zap.String("version", string(version)),
		zap.String("location", location),
		zap.Uint64("fingerprint", sum),
		zap.Int("elements", len(rs.elementOrder)))
	r.store(version, sum, rs)
	return nil
}

// LoadSchemaFromSource parses an in-memory schema source for version.
// Used by deployments that embed their schemas, and by tests.
func (r *SchemaRegistry) LoadSchemaFromSource(version SchemaVersion, data []byte) error {
	if r.HasVersion(version) {
		return nil
	}
	rs, err := parseSource(data)
	if err != nil {
		return &SchemaLoadError{Version: version, Err: err}
	}
	r.store(version, xxhash.Sum64(data), rs)
	return nil
}

func (r *SchemaRegistry) store(version SchemaVersion, sum uint64, rs *resolvedSchema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.versions[version]; exists {
		return
	}
	r.versions[version] = rs
	r.fingerprints[sum] = rs
	if r.active == "" {
		r.active = version
	}
}

// SetActiveVersion selects the default version for lookups that do not
// name one. Fails for versions never successfully loaded.
func (r *SchemaRegistry) SetActiveVersion(version SchemaVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.versions[version]; !ok {
		return &UnknownVersionError{Version: version}
	}
	r.active = version
	return nil
}

// ActiveVersion returns the currently active version, or "" when none
// has been loaded.
func (r *SchemaRegistry) ActiveVersion() SchemaVersion {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// HasVersion reports whether the version was successfully loaded.
func (r *SchemaRegistry) HasVersion(version SchemaVersion) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.versions[version]
	return ok
}

// LoadedVersions returns all loaded versions in sorted order.
func (r *SchemaRegistry) LoadedVersions() []SchemaVersion {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SchemaVersion, 0, len(r.versions))
	for v := range r.versions {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ElementDefinition returns the resolved definition for an element name
// under the given version.
func (r *SchemaRegistry) ElementDefinition(version SchemaVersion, name string) (*ElementDefinition, bool) {
	rs := r.schema(version)
	if rs == nil {
		return nil, false
	}
	return rs.element(name)
}

// ElementNames returns the element names defined by a version, in
// definition order.
func (r *SchemaRegistry) ElementNames(version SchemaVersion) []string {
	rs := r.schema(version)
	if rs == nil {
		return nil
	}
	out := make([]string, len(rs.elementOrder))
	copy(out, rs.elementOrder)
	return out
}

// SimpleType returns a named simple type under the given version.
func (r *SchemaRegistry) SimpleType(version SchemaVersion, name string) (*SimpleTypeDefinition, bool) {
	rs := r.schema(version)
	if rs == nil {
		return nil, false
	}
	return rs.SimpleType(name)
}

// Catalog returns the simple-type catalog for a version, for use with
// ValidateAttribute. Nil when the version is not loaded.
func (r *SchemaRegistry) Catalog(version SchemaVersion) TypeCatalog {
	rs := r.schema(version)
	if rs == nil {
		return nil
	}
	return rs
}

func (r *SchemaRegistry) schema(version SchemaVersion) *resolvedSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.versions[version]
}

// parseSource dispatches on the source format: JSON sources start with
// '{', everything else is treated as XSD.
func parseSource(data []byte) (*resolvedSchema, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("schema source is empty")
	}
	if trimmed[0] == '{' {
		return parseJSONSource(data)
	}
	raw, err := parseXSDSource(data)
	if err != nil {
		return nil, err
	}
	return materializeXSD(raw), nil
}

// materializeXSD resolves every element the raw tables can name. Type
// names with no element declaration of their own are resolvable too, so
// a validator lookup by tag name works whichever way the schema was
// authored.
func materializeXSD(raw *rawSchema) *resolvedSchema {
	rs := &resolvedSchema{
		elements:    make(map[string]*ElementDefinition),
		simpleTypes: raw.simpleTypes,
	}

	resolver := newTypeResolver(raw)

	names := append([]string(nil), raw.elementOrder...)
	var typeNames []string
	for name := range raw.complexTypes {
		if _, ok := raw.elements[name]; !ok {
			typeNames = append(typeNames, name)
		}
	}
	sort.Strings(typeNames)
	names = append(names, typeNames...)

	for _, name := range names {
		if def, ok := resolver.ResolveElement(name); ok {
			rs.elements[name] = def
			rs.elementOrder = append(rs.elementOrder, name)
		}
	}

	return rs
}
