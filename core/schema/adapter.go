// Package schema handles versioned record shapes and the offline batch
// migrations between them. The in-memory model is always the current
// shape; adapters translate at the storage boundary.
package schema

import "github.com/mkuprys/gradefold/core/student"

// Supported schema versions.
const (
	V3 = "3.0"
	V4 = "4.0"
	V5 = "5.0"
)

// Adapter reads and writes one schema version's record shape.
type Adapter interface {
	Version() string
	Decode(data []byte) (*student.Record, error)
	Encode(rec *student.Record) ([]byte, error)
}

// ForVersion returns the adapter for a schema version.
func ForVersion(version string) (Adapter, bool) {
	switch version {
	case V3:
		return v3Adapter{}, true
	case V4:
		return v4Adapter{}, true
	case V5:
		return v5Adapter{}, true
	}
	return nil, false
}
