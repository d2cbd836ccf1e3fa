package params

import (
	"strconv"
	"time"
)

// GetString returns the value for key, or def when absent.
func GetString(p Params, key, def string) string {
	if v, ok := p.Get(key); ok {
		return v
	}
	return def
}

// GetBool returns the value for key parsed as a bool, or def when
// absent or unparsable.
func GetBool(p Params, key string, def bool) bool {
	v, ok := p.Get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// GetInt returns the value for key parsed as an int, or def when
// absent or unparsable.
func GetInt(p Params, key string, def int) int {
	v, ok := p.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GetDuration returns the value for key parsed as a time.Duration,
// or def when absent or unparsable.
func GetDuration(p Params, key string, def time.Duration) time.Duration {
	v, ok := p.Get(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
