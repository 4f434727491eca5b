/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "time"

// QueryOptions configures how a backend pages through an owner's rows.
type QueryOptions struct {
	PageSize     int32         // Items per page (default: 100)
	MaxRetries   int           // Retry attempts for transient errors (default: 3)
	RetryBackoff time.Duration // Backoff between retries, multiplied by attempt (default: 1s)
	// ProgressHandler is called after every page with the number of rows read so far.
	ProgressHandler func(QueryProgress)
}

// QueryProgress tracks paging progress
type QueryProgress struct {
	ItemsRead int64
	PagesRead int
	StartTime time.Time
	LastPage  bool
}

// QueryOption is a functional option for configuring queries
type QueryOption func(*QueryOptions)

// DefaultQueryOptions returns default query options
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		PageSize:     100,
		MaxRetries:   3,
		RetryBackoff: time.Second,
	}
}

// WithPageSize sets the page size
func WithPageSize(size int32) QueryOption {
	return func(opts *QueryOptions) {
		opts.PageSize = size
	}
}

// WithMaxRetries sets the maximum retry attempts
func WithMaxRetries(retries int) QueryOption {
	return func(opts *QueryOptions) {
		opts.MaxRetries = retries
	}
}

// WithRetryBackoff sets the retry backoff duration
func WithRetryBackoff(backoff time.Duration) QueryOption {
	return func(opts *QueryOptions) {
		opts.RetryBackoff = backoff
	}
}

// WithProgressHandler sets a progress callback
func WithProgressHandler(handler func(QueryProgress)) QueryOption {
	return func(opts *QueryOptions) {
		opts.ProgressHandler = handler
	}
}
