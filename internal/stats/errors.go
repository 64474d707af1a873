package stats

import "codeberg.org/verkko/gaugectl/internal/errors"

const (
	// Initialization Errors
	ErrInitFailed = errors.ErrorCode("stats_init_failed")

	// Refresh Errors (transient: the loop logs and keeps the previous values)
	ErrCPURefreshFailed  = errors.ErrorCode("stats_cpu_refresh_failed")
	ErrNetRefreshFailed  = errors.ErrorCode("stats_net_refresh_failed")
	ErrDiskRefreshFailed = errors.ErrorCode("stats_disk_refresh_failed")
	ErrMemRefreshFailed  = errors.ErrorCode("stats_mem_refresh_failed")
)
