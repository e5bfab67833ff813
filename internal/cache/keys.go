package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// Key prefix for all cached projections
const keyPrefix = "wam"

// GameByID returns the cache key for a game projection keyed by id
func GameByID(id uuid.UUID) string {
	return fmt.Sprintf("%s:game:id:%s", keyPrefix, id)
}

// GameByCode returns the cache key for a game projection keyed by code
func GameByCode(code string) string {
	return fmt.Sprintf("%s:game:code:%s", keyPrefix, code)
}

// UserDetails returns the cache key for player-directory details
func UserDetails(id uuid.UUID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}
