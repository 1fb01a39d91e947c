package scripts

import "time"

// Config holds limits for the script executor.
type Config struct {
	// TimeoutSeconds interrupts scripts running longer than this.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxOutputBytes caps captured print output.
	MaxOutputBytes int `mapstructure:"max_output_bytes" default:"1048576"`
	// MaxResultRows caps the rows converted from the result variable.
	MaxResultRows int `mapstructure:"max_result_rows" default:"1000"`
	// MaxResultColumns caps the columns converted from the result variable.
	MaxResultColumns int `mapstructure:"max_result_columns" default:"256"`
	// MaxConcurrent is the number of scripts allowed to run at once.
	MaxConcurrent int `mapstructure:"max_concurrent" default:"4"`
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) maxOutput() int {
	if c.MaxOutputBytes <= 0 {
		return 1 << 20
	}
	return c.MaxOutputBytes
}

func (c Config) maxRows() int {
	if c.MaxResultRows <= 0 {
		return 1000
	}
	return c.MaxResultRows
}

func (c Config) maxColumns() int {
	if c.MaxResultColumns <= 0 {
		return 256
	}
	return c.MaxResultColumns
}

func (c Config) maxConcurrent() int64 {
	if c.MaxConcurrent <= 0 {
		return 4
	}
	return int64(c.MaxConcurrent)
}
