package redis

import "time"

// Option tunes the client built by Open.
type Option func(*config)

type config struct {
	poolSize      int
	minIdleConns  int
	maxIdleTime   time.Duration
	maxLifetime   time.Duration
	retryAttempts int
	retryInterval time.Duration
	readTimeout   time.Duration
	writeTimeout  time.Duration
	dialTimeout   time.Duration
}

func defaultConfig() *config {
	return &config{
		poolSize:      10,
		minIdleConns:  5,
		maxIdleTime:   10 * time.Minute,
		maxLifetime:   30 * time.Minute,
		retryAttempts: 3,
		retryInterval: 5 * time.Second,
		readTimeout:   3 * time.Second,
		writeTimeout:  3 * time.Second,
		dialTimeout:   5 * time.Second,
	}
}

// WithPoolSize caps the number of pooled connections. Default: 10.
func WithPoolSize(n int) Option {
	return func(c *config) {
		c.poolSize = n
	}
}

// WithMinIdleConns keeps at least n idle connections open. Default: 5.
func WithMinIdleConns(n int) Option {
	return func(c *config) {
		c.minIdleConns = n
	}
}

// WithMaxIdleTime closes connections idle longer than d. Default: 10 minutes.
func WithMaxIdleTime(d time.Duration) Option {
	return func(c *config) {
		c.maxIdleTime = d
	}
}

// WithMaxLifetime recycles connections after d. Default: 30 minutes.
func WithMaxLifetime(d time.Duration) Option {
	return func(c *config) {
		c.maxLifetime = d
	}
}

// WithRetry sets the startup retry budget. Attempt n waits n*interval before
// the next try. Default: 3 attempts, 5 second interval.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(c *config) {
		c.retryAttempts = attempts
		c.retryInterval = interval
	}
}

// WithReadTimeout bounds read operations. Default: 3 seconds.
func WithReadTimeout(d time.Duration) Option {
	return func(c *config) {
		c.readTimeout = d
	}
}

// WithWriteTimeout bounds write operations. Default: 3 seconds.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) {
		c.writeTimeout = d
	}
}

// WithDialTimeout bounds new connection establishment. Default: 5 seconds.
func WithDialTimeout(d time.Duration) Option {
	return func(c *config) {
		c.dialTimeout = d
	}
}
