package gormstorage_test

import (
	"github.com/subcom/fleet/internal/storage"
	gormstorage "github.com/subcom/fleet/internal/storage/gorm"
)

// Compile-time interface check
var _ storage.Backend = (*gormstorage.Backend)(nil)
