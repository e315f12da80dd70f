// FILE: itcw/config/timing.go
package config

import "time"

// Timing constants for directory watching.
const (
	// DefaultDebounce coalesces bursts of file events into one rediscovery.
	DefaultDebounce = 250 * time.Millisecond
	// MinDebounce is the floor applied to WithDebounce.
	MinDebounce = 5 * time.Millisecond
	// eventDedupWindow drops identical events some platforms deliver twice.
	eventDedupWindow = 5 * time.Millisecond
)

// MaxFileSize is the largest configuration file a file source will read.
const MaxFileSize = 10 << 20
