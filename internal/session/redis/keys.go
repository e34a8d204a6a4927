package redis

import "fmt"

// Key prefix for all session data
const keyPrefix = "battleship"

// tokenKey returns the Redis key for the session token of a namespace
func tokenKey(namespace string) string {
	return fmt.Sprintf("%s:session:%s:token", keyPrefix, namespace)
}

// refreshTokenKey returns the Redis key for the refresh token of a namespace
func refreshTokenKey(namespace string) string {
	return fmt.Sprintf("%s:session:%s:refresh_token", keyPrefix, namespace)
}
