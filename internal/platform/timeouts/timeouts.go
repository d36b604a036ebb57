// Package timeouts defines shared timeout constants used by the site commands.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// ArtifactLoad caps a single resolve fan-out across all matched figures.
const ArtifactLoad = 10 * time.Second

// WatchDebounce coalesces bursts of file events into one catalog reload.
const WatchDebounce = 250 * time.Millisecond
