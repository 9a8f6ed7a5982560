package store

import (
	"github.com/stevemurr/string-analysis-server/errors"
)

// Backends lists the names accepted by New.
var Backends = []string{"memory", "sqlite"}

// New creates a Store based on the backend name.
//
// Supported backends:
//
//	"memory" - Go maps guarded by a RWMutex (default)
//	"sqlite" - private in-memory SQLite database
//
// Neither backend persists anything across restarts.
func New(backend string) (Store, error) {
	switch backend {
	case "memory", "":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSqliteStore()
	default:
		return nil, errors.Newf("unknown store backend: %q (supported: memory, sqlite)", backend)
	}
}
