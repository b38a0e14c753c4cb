package client

import "time"

type Options func(*options)

type options struct {
	retryCount       int
	retryWaitTime    time.Duration
	retryMaxWaitTime time.Duration
	pollInterval     time.Duration
	clientID         string
}

func newClientOptions() *options {
	return &options{
		retryCount:       8,
		retryWaitTime:    500 * time.Millisecond,
		retryMaxWaitTime: 3 * time.Second,
		pollInterval:     time.Second,
	}
}

func RetryCount(count int) Options {
	return func(conf *options) {
		conf.retryCount = count
	}
}

func RetryWaitTime(duration time.Duration) Options {
	return func(conf *options) {
		conf.retryWaitTime = duration
	}
}

func RetryMaxWaitTime(duration time.Duration) Options {
	return func(conf *options) {
		conf.retryMaxWaitTime = duration
	}
}

// PollInterval sets how often WaitForResult polls for a terminal result.
func PollInterval(duration time.Duration) Options {
	return func(conf *options) {
		conf.pollInterval = duration
	}
}

// ClientID identifies this client to the API's per-client rate limiter.
func ClientID(id string) Options {
	return func(conf *options) {
		conf.clientID = id
	}
}
