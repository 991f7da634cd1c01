package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names accepted by Open
const (
	BackendBadger = "badger"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists every backend name Open understands
var Backends = []string{BackendBadger, BackendJSON, BackendSQLite, BackendMemory}

// Open creates the Memory backend named by backend, rooted at dataDir.
// The memory backend ignores dataDir and keeps nothing across runs.
func Open(ctx context.Context, backend, dataDir string) (Memory, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendBadger:
		return NewBadgerMemory(filepath.Join(dataDir, "badger"))
	case BackendJSON:
		return NewInMemoryStorage(filepath.Join(dataDir, "tasks.json"))
	case BackendSQLite:
		return NewSQLiteMemory(ctx, filepath.Join(dataDir, "tm-list.sqlite"))
	case BackendMemory:
		return NewInMemoryStorage("")
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want one of %s)", backend, strings.Join(Backends, ", "))
	}
}

// StoreJSON stores a JSON-serializable object under key
func StoreJSON(ctx context.Context, m Memory, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return m.Store(ctx, key, data)
}
