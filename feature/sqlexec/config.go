package sqlexec

import "time"

// Config holds limits for ad-hoc queries.
type Config struct {
	// MaxRows caps the rows returned by one query.
	MaxRows int `mapstructure:"max_rows" default:"10000"`
	// TimeoutSeconds bounds loading and running one query.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxConcurrent is the number of queries allowed to run at once.
	MaxConcurrent int `mapstructure:"max_concurrent" default:"4"`
}

func (c Config) maxRows() int {
	if c.MaxRows <= 0 {
		return 10000
	}
	return c.MaxRows
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) maxConcurrent() int64 {
	if c.MaxConcurrent <= 0 {
		return 4
	}
	return int64(c.MaxConcurrent)
}
