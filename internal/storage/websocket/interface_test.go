package websocket_test

import (
	"github.com/subcom/fleet/internal/storage"
	"github.com/subcom/fleet/internal/storage/websocket"
)

// Compile-time interface check.
var _ storage.Backend = (*websocket.Backend)(nil)
