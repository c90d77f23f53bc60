package probe

import "os"

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Route Relay Probe
=================

Posts every vehicle/fuel/preference combination to a running relay and
reports how each request was answered.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the relay (default "http://localhost:8080")
  -origin string
        Origin location (default "52.3676,4.9041")
  -destination string
        Destination location (default "52.0907,5.1214")
  -repeat int
        Times to send the full matrix (default 1)
  -workers int
        Number of concurrent workers (default 4)
  -timeout duration
        HTTP request timeout (default 30s)
  -verbose
        Log every result
  -help
        Show this help message
`)
}
