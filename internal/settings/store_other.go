//go:build !windows

package settings

import "tracetime/internal/infrastructure/logging"

// NewStore returns an in-memory store on platforms without a registry.
func NewStore(_ logging.Logger) Store {
	return NewMemoryStore()
}
