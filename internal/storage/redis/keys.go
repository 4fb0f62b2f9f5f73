package redis

import (
	"fmt"

	"github.com/comus-party/justeprix/internal/model"
)

// Key prefix for all session data
const keyPrefix = "justeprix"

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionIndexKey returns the Redis key for the SET of live session ids
func sessionIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}
