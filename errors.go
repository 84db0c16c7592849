package stbridge

import "fmt"

// SchemaLoadError reports a failure to fetch or parse a schema source
// for one version. The registry is left untouched for that version, so
// the caller may retry or operate without it.
type SchemaLoadError struct {
	Version SchemaVersion
	Source  string
	Err     error
}

func (e *SchemaLoadError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("failed to load schema %s from %s: %v", e.Version, e.Source, e.Err)
	}
	return fmt.Sprintf("failed to load schema %s: %v", e.Version, e.Err)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Err
}

// UnknownVersionError reports activation of a version that was never
// successfully loaded. This is a usage error, surfaced immediately.
type UnknownVersionError struct {
	Version SchemaVersion
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("schema version %s has not been loaded", e.Version)
}
