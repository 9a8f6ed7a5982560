// Package store defines the backing store interface and implementations.
package store

import (
	"time"

	"github.com/stevemurr/string-analysis-server/analyzer"
	"github.com/stevemurr/string-analysis-server/query"
)

// Record is one analyzed string. Records are never modified after creation.
type Record struct {
	ID         string              `json:"id"`
	Value      string              `json:"value"`
	Properties analyzer.Properties `json:"properties"`
	CreatedAt  time.Time           `json:"created_at"`
}

// clone returns a copy of r that shares no mutable state with it.
func (r Record) clone() Record {
	r.Properties = r.Properties.Clone()
	return r
}

// Store is the interface that all backing stores must implement.
// Records are kept in insertion order and are looked up by their exact value;
// the ID is only used to enforce uniqueness.
type Store interface {
	// Insert adds a record. It fails with errors.ErrConflict if a record with
	// the same ID exists; the check and the insert are atomic.
	Insert(rec Record) error

	// Get returns the record holding value, or nil if not found.
	Get(value string) (*Record, error)

	// List returns every record matching c, in insertion order.
	List(c query.Criteria) ([]Record, error)

	// Delete removes the record holding value. Returns true if it existed.
	Delete(value string) (bool, error)

	// Count returns the number of stored records.
	Count() (int, error)

	// Close releases any resources held by the store.
	Close() error
}
