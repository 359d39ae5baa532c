package classinfo

import "go.uber.org/zap"

// DefaultMaxDepth bounds how many superclass links a build follows before the
// hierarchy is considered malformed.
const DefaultMaxDepth = 64

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger build and invalidation events go to. A nil
// logger keeps the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMaxDepth sets the superclass depth limit.
// A non-positive value resets to DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(c *Cache) {
		if depth <= 0 {
			c.maxDepth = DefaultMaxDepth
			return
		}
		c.maxDepth = depth
	}
}
