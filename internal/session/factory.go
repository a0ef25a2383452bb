package session

import (
	"context"
	"fmt"
)

// BackendMemory keeps sessions in process memory
const BackendMemory = "memory"

// Open creates the store for a backend name: memory, sqlite, postgres or
// mysql. The DSN is ignored for memory.
func Open(ctx context.Context, backend, dsn string) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, DriverPostgres, DriverMySQL:
		if dsn == "" {
			return nil, fmt.Errorf("storage backend %s requires a DSN", backend)
		}
		return OpenSQLStore(ctx, backend, dsn)
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}
