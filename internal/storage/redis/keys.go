package redis

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/wam-arcade/games-service/internal/storage"
)

// Key prefix for all games-service data
const keyPrefix = "wamgames"

// gameKey returns the Redis key for a game aggregate
func gameKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// codeIndexKey returns the Redis key for the code -> game id index
func codeIndexKey(code string) string {
	return fmt.Sprintf("%s:idx:code:%s", keyPrefix, code)
}

// slotKey returns the Redis key for a singleton state slot marker
func slotKey(slot storage.StateSlot) string {
	return fmt.Sprintf("%s:slot:%s", keyPrefix, slot)
}
