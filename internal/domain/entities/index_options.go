package entities

import "time"

// IndexOptions configures a package index client.
type IndexOptions struct {
	URL     string
	Timeout time.Duration
	Retries int
}
