package memory_test

import (
	"github.com/subcom/fleet/internal/storage"
	"github.com/subcom/fleet/internal/storage/memory"
)

// Compile-time interface checks.
var (
	_ storage.Backend    = (*memory.Backend)(nil)
	_ storage.Uploadable = (*memory.Backend)(nil)
)
