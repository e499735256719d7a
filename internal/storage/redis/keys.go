package redis

import "fmt"

// Key prefix for all server data
const keyPrefix = "awale"

// playerKey returns the Redis key for a player record
func playerKey(handle string) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, handle)
}

// playerIndexKey returns the Redis key for the SET of registered handles
func playerIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}
