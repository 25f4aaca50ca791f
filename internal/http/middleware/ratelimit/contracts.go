package ratelimit

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(key string) bool
}
