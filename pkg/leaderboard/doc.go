// Package leaderboard derives competitive ranks from the high-score counter.
//
// Rank is defined as the count of users with a strictly greater high score
// plus one; ties share a rank. StoreIndex recomputes this against the usage
// store on every call, RedisIndex mirrors high scores into a sorted set and
// answers from ZCOUNT, falling back to the store whenever the mirror misses.
package leaderboard
