// Package redis manages the optional Redis connection used by the cached
// leaderboard index. When REDIS_URL is unset the service runs without it.
package redis
